package moduleio

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// The on-disk contract. Field names and their order are fixed; bump schemaVersion
// on any change. Version 1 documents are still read: they only lack score_inf.
const (
	schemaName       = "dockpipe.moduleio"
	schemaVersion    = 2
	minSchemaVersion = 1

	positiveInf = "+Inf"
	negativeInf = "-Inf"

	typePersistent = "ontology.Persistent"
	typeModel      = "ontology.Model"
)

type manifestDoc struct {
	Schema  string      `json:"schema"`
	Version int         `json:"version"`
	Input   []recordDoc `json:"input"`
	Output  []entryDoc  `json:"output"`
}

type recordDoc struct {
	Type     string    `json:"type"`
	Created  string    `json:"created"`
	FileName string    `json:"file_name"`
	FileType string    `json:"file_type"`
	Path     string    `json:"path"`
	RelPath  string    `json:"rel_path"`
	Model    *modelDoc `json:"model,omitempty"`
}

type modelDoc struct {
	Score            *float64    `json:"score"`
	ScoreInf         string      `json:"score_inf,omitempty"`
	Topology         []recordDoc `json:"topology"`
	OriName          *string     `json:"ori_name"`
	ClusterID        *int        `json:"clt_id"`
	ClusterRank      *int        `json:"clt_rank"`
	ClusterModelRank *int        `json:"clt_model_rank"`
}

type entryDoc struct {
	Single   *recordDoc   `json:"single,omitempty"`
	Ensemble *[]memberDoc `json:"ensemble,omitempty"`
}

type memberDoc struct {
	Key    string    `json:"key"`
	Record recordDoc `json:"record"`
}

// Encode serialises the manifest. The same manifest always encodes to the same bytes.
func (m *Manifest) Encode() ([]byte, error) {
	doc := manifestDoc{
		Schema:  schemaName,
		Version: schemaVersion,
		Input:   make([]recordDoc, 0, len(m.Input)),
		Output:  make([]entryDoc, 0, len(m.Output)),
	}
	for i, rec := range m.Input {
		rd, err := encodeRecord(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		doc.Input = append(doc.Input, rd)
	}
	for i, entry := range m.Output {
		ed, err := encodeEntry(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		doc.Output = append(doc.Output, ed)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(err, "unable to encode manifest")
	}
	return buf.Bytes(), nil
}

// Save writes the manifest as FileName in dir and returns the file path.
func (m *Manifest) Save(dir string) (string, error) {
	data, err := m.Encode()
	if err != nil {
		return "", err
	}
	fpath := filepath.Join(dir, FileName)
	if err := os.WriteFile(fpath, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "unable to write manifest %s", fpath)
	}
	return fpath, nil
}

// Load reads a manifest written by Save.
func Load(fpath string) (*Manifest, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read manifest %s", fpath)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return m, nil
}

// Decode is the inverse of Encode. Any mismatch with the schema is an ErrDeserialization.
func Decode(data []byte) (*Manifest, error) {
	var doc manifestDoc
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(ErrDeserialization, err.Error())
	}
	if doc.Schema != schemaName || doc.Version < minSchemaVersion || doc.Version > schemaVersion {
		return nil, errors.Wrapf(ErrDeserialization, "unsupported schema %q version %d", doc.Schema, doc.Version)
	}

	m := New()
	for i, rd := range doc.Input {
		rec, err := decodeRecord(rd)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		m.Input = append(m.Input, rec)
	}
	for i, ed := range doc.Output {
		entry, err := decodeEntry(ed)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d", i)
		}
		m.Output = append(m.Output, entry)
	}
	return m, nil
}

func encodePersistent(typ string, p *ontology.Persistent) recordDoc {
	return recordDoc{
		Type:     typ,
		Created:  p.Created.UTC().Format(time.RFC3339),
		FileName: p.FileName,
		FileType: p.Format.String(),
		Path:     p.Path,
		RelPath:  p.RelPath,
	}
}

func encodeRecord(rec ontology.Record) (recordDoc, error) {
	if rec == nil {
		return recordDoc{}, ErrEmptyRecord
	}
	model, ok := rec.(*ontology.Model)
	if !ok {
		meta := rec.Meta()
		if meta == nil {
			return recordDoc{}, ErrEmptyRecord
		}
		return encodePersistent(typePersistent, meta), nil
	}
	if model == nil {
		return recordDoc{}, ErrEmptyRecord
	}

	doc := encodePersistent(typeModel, &model.Persistent)
	md := &modelDoc{
		Topology:         make([]recordDoc, 0, len(model.Topology)),
		ClusterID:        model.ClusterID,
		ClusterRank:      model.ClusterRank,
		ClusterModelRank: model.ClusterModelRank,
	}
	switch {
	case math.IsInf(model.Score, 1):
		md.ScoreInf = positiveInf
	case math.IsInf(model.Score, -1):
		md.ScoreInf = negativeInf
	case model.Scored():
		score := model.Score
		md.Score = &score
	}
	if model.OriName != "" {
		oriName := model.OriName
		md.OriName = &oriName
	}
	for _, topo := range model.Topology {
		md.Topology = append(md.Topology, encodePersistent(typePersistent, topo))
	}
	doc.Model = md
	return doc, nil
}

func encodeEntry(entry ontology.Entry) (entryDoc, error) {
	if ens, ok := entry.Ensemble(); ok {
		members := make([]memberDoc, 0, ens.Len())
		for _, member := range ens.Members() {
			rd, err := encodeRecord(member.Record)
			if err != nil {
				return entryDoc{}, errors.Wrapf(err, "ensemble key %q", member.Key)
			}
			members = append(members, memberDoc{Key: member.Key, Record: rd})
		}
		return entryDoc{Ensemble: &members}, nil
	}
	rec, ok := entry.Record()
	if !ok {
		return entryDoc{}, ErrEmptyRecord
	}
	doc, err := encodeRecord(rec)
	if err != nil {
		return entryDoc{}, err
	}
	return entryDoc{Single: &doc}, nil
}

func decodePersistent(doc recordDoc) (*ontology.Persistent, error) {
	created, err := time.Parse(time.RFC3339, doc.Created)
	if err != nil {
		return nil, errors.Wrapf(ErrDeserialization, "created: %s", err)
	}
	format, err := ontology.ParseFormat(doc.FileType)
	if err != nil {
		return nil, errors.Wrapf(ErrDeserialization, "file_type: %s", err)
	}
	if doc.FileName == "" {
		return nil, errors.Wrap(ErrDeserialization, "file_name is empty")
	}
	return &ontology.Persistent{
		Created:  created.UTC(),
		FileName: doc.FileName,
		Format:   format,
		Path:     doc.Path,
		RelPath:  doc.RelPath,
	}, nil
}

func decodeRecord(doc recordDoc) (ontology.Record, error) {
	switch doc.Type {
	case typePersistent:
		if doc.Model != nil {
			return nil, errors.Wrapf(ErrDeserialization, "%s carries model fields", doc.Type)
		}
		return decodePersistent(doc)
	case typeModel:
		if doc.Model == nil {
			return nil, errors.Wrapf(ErrDeserialization, "%s without model fields", doc.Type)
		}
	default:
		return nil, errors.Wrapf(ErrDeserialization, "unknown record type %q", doc.Type)
	}

	p, err := decodePersistent(doc)
	if err != nil {
		return nil, err
	}
	model := &ontology.Model{
		Persistent:       *p,
		Score:            math.NaN(),
		ClusterID:        doc.Model.ClusterID,
		ClusterRank:      doc.Model.ClusterRank,
		ClusterModelRank: doc.Model.ClusterModelRank,
	}
	switch doc.Model.ScoreInf {
	case "":
		if doc.Model.Score != nil {
			model.Score = *doc.Model.Score
		}
	case positiveInf, negativeInf:
		if doc.Model.Score != nil {
			return nil, errors.Wrap(ErrDeserialization, "score and score_inf are both set")
		}
		model.Score = math.Inf(1)
		if doc.Model.ScoreInf == negativeInf {
			model.Score = math.Inf(-1)
		}
	default:
		return nil, errors.Wrapf(ErrDeserialization, "score_inf %q", doc.Model.ScoreInf)
	}
	if doc.Model.OriName != nil {
		model.OriName = *doc.Model.OriName
	}
	for i, td := range doc.Model.Topology {
		if td.Type != typePersistent {
			return nil, errors.Wrapf(ErrDeserialization, "topology %d has type %q", i, td.Type)
		}
		topo, err := decodePersistent(td)
		if err != nil {
			return nil, errors.Wrapf(err, "topology %d", i)
		}
		model.Topology = append(model.Topology, topo)
	}
	return model, nil
}

func decodeEntry(doc entryDoc) (ontology.Entry, error) {
	switch {
	case doc.Single != nil && doc.Ensemble != nil:
		return ontology.Entry{}, errors.Wrap(ErrDeserialization, "entry is both single and ensemble")
	case doc.Single != nil:
		rec, err := decodeRecord(*doc.Single)
		if err != nil {
			return ontology.Entry{}, err
		}
		return ontology.Single(rec), nil
	case doc.Ensemble != nil:
		ens := ontology.NewEnsemble()
		for _, md := range *doc.Ensemble {
			if _, dup := ens.Get(md.Key); dup {
				return ontology.Entry{}, errors.Wrapf(ErrDeserialization, "duplicated ensemble key %q", md.Key)
			}
			rec, err := decodeRecord(md.Record)
			if err != nil {
				return ontology.Entry{}, errors.Wrapf(err, "ensemble key %q", md.Key)
			}
			ens.Set(md.Key, rec)
		}
		return ontology.EnsembleEntry(ens), nil
	}
	return ontology.Entry{}, errors.Wrap(ErrDeserialization, "entry is neither single nor ensemble")
}
