// Package publish is the single write path for producers.
//
// Publisher.PublishEvent drives delivery through both legs: the external
// proxy leg (when a control endpoint is configured) and the process-local
// bus. The call resolves only once every required leg has completed, which
// makes it the system's one backpressure primitive — a slow or failing
// proxy slows or fails publication, and Sink turns that into write-level
// flow control for streaming producers.
package publish
