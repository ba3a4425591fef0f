package ontology

// Entry is one element of a manifest output list: either a single independent
// record, or an ensemble holding one record per position of a multi-molecule group.
type Entry struct {
	single   Record
	ensemble *Ensemble
}

// Single wraps an independent record.
func Single(rec Record) Entry {
	return Entry{single: rec}
}

// EnsembleEntry wraps an ensemble.
func EnsembleEntry(ens *Ensemble) Entry {
	return Entry{ensemble: ens}
}

// Record returns the wrapped record, if the entry is a single one.
func (e Entry) Record() (Record, bool) {
	return e.single, e.single != nil
}

// Ensemble returns the wrapped ensemble, if the entry is one.
func (e Entry) Ensemble() (*Ensemble, bool) {
	return e.ensemble, e.ensemble != nil
}

// IsEnsemble reports whether the entry is an ensemble.
func (e Entry) IsEnsemble() bool {
	return e.ensemble != nil
}

// Records returns every record of the entry in order.
func (e Entry) Records() []Record {
	if e.ensemble != nil {
		return e.ensemble.Records()
	}
	if e.single == nil {
		return nil
	}
	return []Record{e.single}
}

// Member is a keyed slot of an ensemble.
type Member struct {
	Key    string
	Record Record
}

// Ensemble maps group keys to records and keeps the insertion order of the keys.
type Ensemble struct {
	members []Member
}

// NewEnsemble builds an ensemble from members, in order. A repeated key replaces
// the record of the first occurrence.
func NewEnsemble(members ...Member) *Ensemble {
	ens := &Ensemble{}
	for _, m := range members {
		ens.Set(m.Key, m.Record)
	}
	return ens
}

// Set adds or replaces the record stored at key.
func (e *Ensemble) Set(key string, rec Record) {
	for i := range e.members {
		if e.members[i].Key == key {
			e.members[i].Record = rec
			return
		}
	}
	e.members = append(e.members, Member{Key: key, Record: rec})
}

// Get returns the record stored at key.
func (e *Ensemble) Get(key string) (Record, bool) {
	for _, m := range e.members {
		if m.Key == key {
			return m.Record, true
		}
	}
	return nil, false
}

// Delete removes key from the ensemble.
func (e *Ensemble) Delete(key string) {
	for i, m := range e.members {
		if m.Key == key {
			e.members = append(e.members[:i], e.members[i+1:]...)
			return
		}
	}
}

func (e *Ensemble) Len() int {
	return len(e.members)
}

// Members returns a copy of the ordered members.
func (e *Ensemble) Members() []Member {
	out := make([]Member, len(e.members))
	copy(out, e.members)
	return out
}

// Records returns the records in key order.
func (e *Ensemble) Records() []Record {
	out := make([]Record, len(e.members))
	for i, m := range e.members {
		out[i] = m.Record
	}
	return out
}
