// Package pipeline provides composable, pull-based stream operators.
//
// Pipelines are lazy — no work happens until values are pulled via Collect,
// Drain, or ForEach. Each stage pulls from the previous stage on demand,
// providing natural backpressure without explicit flow control: a consumer
// that is not ready simply does not pull.
//
// The event delivery path is built on this substrate. A channel
// subscription is an Iterator of events, the serializer stage is a Map from
// events to wire frames, and direct delivery is a Drain into the open
// connection.
//
// # Operators
//
//   - Map: transform each value (one output per input, order preserving)
//   - Tap: side-effect without altering the value (logging, metrics)
package pipeline
