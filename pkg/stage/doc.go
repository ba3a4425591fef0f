// Package stage holds what every stage of a pipeline shares: reading the
// manifest of the previous stage, checking the engine installation and
// exporting the models it produced. Scoring is a complete stage built on it.
package stage
