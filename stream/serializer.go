package stream

import (
	"context"

	"github.com/kbukum/eventstream/pipeline"
	"github.com/kbukum/eventstream/wire"
)

// Frames is the serializer stage: it transforms a pipeline of event records
// into a pipeline of encoded wire frames, strictly one frame per event,
// preserving order. It does no work while no input arrives.
func Frames(events *pipeline.Pipeline[wire.Event]) *pipeline.Pipeline[string] {
	return pipeline.Map(events, func(_ context.Context, ev wire.Event) (string, error) {
		return wire.Encode(ev), nil
	})
}
