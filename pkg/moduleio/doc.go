// Package moduleio implements the manifest every stage writes next to its outputs.
//
// A manifest records the records a stage consumed and the records it produced. It is
// persisted once per stage run with a versioned, documented JSON schema so that the
// next stage and the traceback reconstruction can load it on their own. The package
// also turns the outputs of a manifest into the candidates the next stage works on,
// pairing, cross-combining or flattening ensembles.
package moduleio
