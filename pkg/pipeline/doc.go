// Package pipeline provides a channel based pipeline used to dispatch jobs.
//
// A pipeline starts with a root step that emits elements, continues with steps that
// transform every element, possibly with several goroutines, and ends with a sink
// that consumes the results. Elements flow through unbuffered channels, so a step
// never holds more elements than it has goroutines.
//
// The pipeline stops on the first error returned by a step and cancels the others.
// Steps that want to tolerate failures of single elements must report them as
// values instead of errors.
//
// Options implementing model.PipelineOption are notified when steps are prepared
// and every time a step pushes an element, which is how timings are measured and
// how the pipeline graph is drawn.
package pipeline
