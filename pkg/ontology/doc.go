// Package ontology describes the files exchanged between the stages of a docking run.
// It defines the persistent records every stage produces, the structural models that
// carry a score and a link to their parent, and the tagged output entry used to keep
// ensembles (one slot per molecule) apart from independent models.
package ontology
