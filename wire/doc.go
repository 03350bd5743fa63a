// Package wire defines the event record and the text/event-stream frame
// codec used on every delivery path.
//
// Encoding is pure: an Event goes in, the exact frame text comes out, with
// a fixed field order (event, id, data) and a blank line terminating each
// frame. Multi-line payloads are escaped by repeating the data prefix per
// line, so the frame always re-assembles to the original payload on the
// client side.
package wire
