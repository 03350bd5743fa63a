package wire

import "strings"

// Encode renders one event as a text/event-stream frame.
//
// Field order is fixed: event, id (when set), data. Every line of the
// payload gets its own "data: " prefix, and an empty payload still renders
// one empty data line so each frame carries a data field. A blank line
// terminates the frame.
func Encode(ev Event) string {
	var b strings.Builder

	b.WriteString("event: ")
	b.WriteString(ev.Type)
	b.WriteByte('\n')

	if ev.ID != "" {
		b.WriteString("id: ")
		b.WriteString(ev.ID)
		b.WriteByte('\n')
	}

	for _, line := range strings.Split(ev.Data, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	return b.String()
}

// Join concatenates frames in order into a single write unit. Frames are
// self-terminating, so no separator is added.
func Join(frames []string) string {
	return strings.Join(frames, "")
}
