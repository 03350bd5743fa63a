package stream

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/eventstream/bus"
	"github.com/kbukum/eventstream/pipeline"
	"github.com/kbukum/eventstream/wire"
)

func TestSubscribe_ReceivesMatchingEvents(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	defer sub.Close()

	b.Publish("a", wire.Event{Type: "x", Data: "1"})
	b.Publish("a", wire.Event{Type: "x", Data: "2"})

	ctx := context.Background()
	ev, ok, err := sub.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected first event, got (ok=%v, err=%v)", ok, err)
	}
	if ev.Data != "1" {
		t.Errorf("expected data '1', got %q", ev.Data)
	}

	ev, ok, _ = sub.Next(ctx)
	if !ok || ev.Data != "2" {
		t.Errorf("expected data '2' in order, got (%+v, %v)", ev, ok)
	}
}

func TestSubscribe_FiltersByChannelSet(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	defer sub.Close()

	b.Publish("b", wire.Event{Type: "x", Data: "other"})
	b.Publish("a", wire.Event{Type: "x", Data: "mine"})

	ev, ok, err := sub.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected event, got (ok=%v, err=%v)", ok, err)
	}
	if ev.Data != "mine" {
		t.Errorf("expected only matching event, got %q", ev.Data)
	}
}

func TestSubscribe_DedupesChannels(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a", "b", "a", "c", "b"})
	defer sub.Close()

	chs := sub.Channels()
	if len(chs) != 3 || chs[0] != "a" || chs[1] != "b" || chs[2] != "c" {
		t.Errorf("expected [a b c], got %v", chs)
	}

	// Duplicate registration must not cause duplicate delivery.
	b.Publish("a", wire.Event{Type: "x", Data: "once"})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	ev, ok, _ := sub.Next(ctx)
	if !ok || ev.Data != "once" {
		t.Fatalf("expected one event, got (%+v, %v)", ev, ok)
	}
	if _, ok, _ := sub.Next(ctx); ok {
		t.Error("expected no duplicate delivery")
	}
}

func TestSubscription_NextBlocksUntilPublish(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	defer sub.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Publish("a", wire.Event{Type: "x", Data: "late"})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ev, ok, err := sub.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("expected event after wait, got (ok=%v, err=%v)", ok, err)
	}
	if ev.Data != "late" {
		t.Errorf("expected 'late', got %q", ev.Data)
	}
}

func TestSubscription_CloseDetachesFromBus(t *testing.T) {
	b := bus.New()
	before := b.ListenerCount()

	sub := Subscribe(b, []string{"a", "b"})
	if b.ListenerCount() != before+1 {
		t.Errorf("expected %d listeners, got %d", before+1, b.ListenerCount())
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if b.ListenerCount() != before {
		t.Errorf("expected listener count restored, got %d", b.ListenerCount())
	}

	// Close is idempotent.
	if err := sub.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if b.ListenerCount() != before {
		t.Errorf("expected listener count unchanged after double close, got %d", b.ListenerCount())
	}
}

func TestSubscription_QueuedEventsSurviveClose(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})

	b.Publish("a", wire.Event{Type: "x", Data: "accepted"})
	sub.Close()

	// The event was accepted by the bus callback before teardown; it must
	// still be drainable.
	ev, ok, err := sub.Next(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected queued event after close, got (ok=%v, err=%v)", ok, err)
	}
	if ev.Data != "accepted" {
		t.Errorf("expected 'accepted', got %q", ev.Data)
	}

	if _, ok, err := sub.Next(context.Background()); ok || err != nil {
		t.Errorf("expected exhaustion after drain, got (ok=%v, err=%v)", ok, err)
	}
}

func TestSubscription_NextAfterCloseReturnsDone(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	sub.Close()

	_, ok, err := sub.Next(context.Background())
	if ok || err != nil {
		t.Errorf("expected clean exhaustion, got (ok=%v, err=%v)", ok, err)
	}
}

func TestSubscription_ContextCancellation(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	defer sub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := sub.Next(ctx)
	if ok {
		t.Error("expected no event")
	}
	if err == nil {
		t.Error("expected context error")
	}
}

func TestSubscription_PublishAfterCloseIsIgnored(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})
	sub.Close()

	b.Publish("a", wire.Event{Type: "x", Data: "dropped"})

	_, ok, _ := sub.Next(context.Background())
	if ok {
		t.Error("expected no event after close")
	}
}

func TestSubscription_LastEventID(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"}, WithLastEventID("evt-7"))
	defer sub.Close()

	if sub.LastEventID() != "evt-7" {
		t.Errorf("expected resume marker carried, got %q", sub.LastEventID())
	}
}

func TestFrames_OneFramePerEvent(t *testing.T) {
	events := pipeline.FromSlice([]wire.Event{
		{Type: "a", Data: "1"},
		{Type: "b", Data: "2"},
	})

	frames, err := pipeline.Collect(context.Background(), Frames(events))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0] != wire.Encode(wire.Event{Type: "a", Data: "1"}) {
		t.Errorf("unexpected first frame %q", frames[0])
	}
	if !strings.HasPrefix(frames[1], "event: b\n") {
		t.Errorf("expected order preserved, got %q", frames[1])
	}
}

func TestFrames_FromSubscription(t *testing.T) {
	b := bus.New()
	sub := Subscribe(b, []string{"a"})

	b.Publish("a", wire.Event{Type: "x", Data: "y"})
	sub.Close()

	frames, err := pipeline.Collect(context.Background(), Frames(sub.Events()))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0] != "event: x\ndata: y\n\n" {
		t.Errorf("unexpected frame %q", frames[0])
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"b", "a", "b", "c", "a"})
	if len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Errorf("expected [b a c], got %v", got)
	}

	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}
