package ontology

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record is implemented by every file a stage can put in a manifest.
type Record interface {
	Meta() *Persistent
}

// Persistent is any file generated by a stage.
type Persistent struct {
	Created  time.Time
	FileName string
	Format   Format
	// Path is the absolute directory of the stage that owns the file.
	Path string
	// RelPath points to the file from any sibling stage directory.
	RelPath string
}

// NewPersistent creates the record of fileName, owned by the stage directory path.
func NewPersistent(fileName string, format Format, path string) *Persistent {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	name := filepath.Base(fileName)
	return &Persistent{
		Created:  time.Now().UTC().Truncate(time.Second),
		FileName: name,
		Format:   format,
		Path:     abs,
		RelPath:  filepath.Join("..", filepath.Base(abs), name),
	}
}

// NewTopology creates the record of a topology file.
func NewTopology(fileName, path string) *Persistent {
	return NewPersistent(fileName, Topology, path)
}

func (p *Persistent) Meta() *Persistent {
	return p
}

// FullName is the absolute path of the file.
func (p *Persistent) FullName() string {
	return filepath.Join(p.Path, p.FileName)
}

// IsPresent checks on disk, every time, whether the file exists.
func (p *Persistent) IsPresent() bool {
	_, err := os.Stat(filepath.Join(p.Path, p.RelPath))
	return err == nil
}

func (p *Persistent) String() string {
	return fmt.Sprintf("[%s|%s] %s", p.Format, p.Created.Format(time.DateTime), p.FullName())
}

var _ Record = (*Persistent)(nil)
