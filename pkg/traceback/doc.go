// Package traceback rebuilds, once a run is finished, the ancestry of every
// model of the last stage back to the topologies it was built from, together
// with its rank at every stage.
//
// The stages are walked from the last to the first. Every model of the last
// stage opens a lineage; a model of an earlier stage extends the lineages whose
// ancestor it is, or opens a lineage of its own, named unk<i>, when none of its
// descendants survived to the last stage.
package traceback
