package moduleio

import (
	"github.com/askiada/go-dockpipe/pkg/ontology"
)

// PruneMissing removes, in place, every output record whose file is absent,
// including members of ensembles, and returns the percentage of expected outputs
// that were missing. A manifest that expects nothing is an ErrEmptyExpectation.
func (m *Manifest) PruneMissing() (float64, error) {
	var total, present int
	kept := m.Output[:0]
	for _, entry := range m.Output {
		if ens, ok := entry.Ensemble(); ok {
			for _, member := range ens.Members() {
				total++
				if member.Record.Meta().IsPresent() {
					present++
					continue
				}
				ens.Delete(member.Key)
			}
			kept = append(kept, entry)
			continue
		}

		total++
		rec, _ := entry.Record()
		if rec != nil && rec.Meta().IsPresent() {
			present++
			kept = append(kept, entry)
		}
	}
	if total == 0 {
		return 0, ErrEmptyExpectation
	}
	for i := len(kept); i < len(m.Output); i++ {
		m.Output[i] = ontology.Entry{}
	}
	m.Output = kept

	return (1 - float64(present)/float64(total)) * 100, nil
}
