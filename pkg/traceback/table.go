package traceback

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

const topologyPrefix = "00_topo"

// TopologyColumn returns the name of the i-th topology column, counted from 1.
func TopologyColumn(i int) string {
	return topologyPrefix + strconv.Itoa(i)
}

// RankColumn returns the name of the rank column of a stage.
func RankColumn(stage string) string {
	return stage + "_rank"
}

// Table is the traceback of a run: one row per lineage, columns sorted by name.
type Table struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable lays the lineages of stages out as rows. Cells a lineage has no
// value for are empty. Without stages the table has no column and no row.
func NewTable(stages []Stage, lineages []*Lineage, maxTopologies int) *Table {
	if len(stages) == 0 {
		table := &Table{Columns: []string{}, Rows: [][]string{}}
		table.buildIndex()

		return table
	}

	last := len(stages) - 1

	// position of every column in a lineage, before sorting
	type source struct {
		rank bool
		idx  int
	}

	sources := map[string]source{}
	sources[stages[last].Name] = source{idx: -1}
	for j := 0; j < last; j++ {
		sources[stages[last-1-j].Name] = source{idx: j}
	}
	for i := 0; i < maxTopologies; i++ {
		sources[TopologyColumn(i+1)] = source{idx: last + i}
	}
	for j := 0; j <= last; j++ {
		sources[RankColumn(stages[last-j].Name)] = source{rank: true, idx: j}
	}

	table := &Table{
		Columns: make([]string, 0, len(sources)),
		Rows:    make([][]string, 0, len(lineages)),
	}
	for col := range sources {
		table.Columns = append(table.Columns, col)
	}
	sort.Strings(table.Columns)
	table.buildIndex()

	for _, lin := range lineages {
		row := make([]string, len(table.Columns))
		for c, col := range table.Columns {
			src := sources[col]
			switch {
			case src.idx == -1 && lin.Unknown():
				row[c] = Absent
			case src.idx == -1:
				row[c] = lin.Key
			case src.rank:
				row[c] = cell(lin.Ranks, src.idx)
			default:
				row[c] = cell(lin.Ancestors, src.idx)
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func cell(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}

	return ""
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[col] = i
	}
}

// Value returns the cell of row in column, and false when the column does not exist.
func (t *Table) Value(row int, column string) (string, bool) {
	idx, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) {
		return "", false
	}

	return t.Rows[row][idx], true
}

// WriteTSV writes the header and the rows separated by tabs.
func (t *Table) WriteTSV(wrt io.Writer) error {
	w := csv.NewWriter(wrt)
	w.Comma = '\t'

	err := w.Write(t.Columns)
	if err != nil {
		return errors.Wrap(err, "unable to write header")
	}

	err = w.WriteAll(t.Rows)
	if err != nil {
		return errors.Wrap(err, "unable to write rows")
	}

	return nil
}
