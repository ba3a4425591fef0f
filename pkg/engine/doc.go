// Package engine dispatches independent jobs to a backend and reports which of
// their expected outputs materialized.
//
// A job that fails or produces nothing is not an error of the engine: it shows
// up in the Report, and the caller decides whether the missing fraction is
// acceptable. Dispatch only fails when the backend itself cannot run.
package engine
