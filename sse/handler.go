package sse

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/eventstream/bus"
	"github.com/kbukum/eventstream/errors"
	"github.com/kbukum/eventstream/grip"
	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/observability"
	"github.com/kbukum/eventstream/pipeline"
	"github.com/kbukum/eventstream/stream"
	"github.com/kbukum/eventstream/wire"
)

// MediaType is the media type event stream responses carry.
const MediaType = "text/event-stream"

// LastEventIDHeader carries the client's resume marker on reconnects.
const LastEventIDHeader = "Last-Event-ID"

// resumeMarkerError is sent by clients whose previous stream ended in an
// error state. Such reconnects are refused so the client starts clean.
const resumeMarkerError = "error"

const (
	// DefaultChannelQueryParam is the query parameter clients use to name
	// channels when none are configured statically.
	DefaultChannelQueryParam = "channel"
	// DefaultChannelPrefix namespaces channel names on the proxy side.
	DefaultChannelPrefix = "events-"
	// DefaultKeepAliveInterval is the idle heartbeat interval.
	DefaultKeepAliveInterval = 20 * time.Second
)

// Proxy is the GRIP collaborator the handler needs: detection of proxied
// requests and hold issuance. Satisfied by grip.Proxy.
type Proxy interface {
	Detect(r *http.Request) grip.ProxyStatus
	StartHold(w http.ResponseWriter) *grip.Hold
}

// Options configures a Handler.
type Options struct {
	// Channels statically binds every connection to these channels. When
	// empty, channels come from the request's query parameters.
	Channels []string
	// ChannelQueryParam names the query parameter that supplies channels.
	// Defaults to "channel".
	ChannelQueryParam string
	// AlwaysQueryChannels reads query channels even when static channels
	// are configured.
	AlwaysQueryChannels bool
	// ChannelPrefix namespaces channel names in hold directives so the
	// proxy-side namespace matches the publisher's. Defaults to "events-".
	ChannelPrefix string
	// KeepAliveInterval is the idle heartbeat interval for both held and
	// directly-served connections. Defaults to 20s.
	KeepAliveInterval time.Duration
	// Proxy detects proxied requests and issues holds. Nil means no
	// proxy is deployed and every connection is served directly.
	Proxy Proxy
	// Metrics is optional.
	Metrics *observability.Metrics
}

// Handler serves event stream connections.
type Handler struct {
	bus  *bus.Bus
	opts Options
	log  *logger.Logger
}

// NewHandler creates a Handler streaming events from b.
func NewHandler(b *bus.Bus, opts Options) *Handler {
	if opts.ChannelQueryParam == "" {
		opts.ChannelQueryParam = DefaultChannelQueryParam
	}
	if opts.ChannelPrefix == "" {
		opts.ChannelPrefix = DefaultChannelPrefix
	}
	if opts.KeepAliveInterval <= 0 {
		opts.KeepAliveInterval = DefaultKeepAliveInterval
	}
	return &Handler{
		bus:  b,
		opts: opts,
		log:  logger.WithComponent("sse"),
	}
}

// ServeHTTP handles one event stream request. Rejections complete with a
// plain-text error response; accepted requests commit to a 200 and an
// opening frame before any streaming or hold takes place.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := observability.StartSpan(r.Context(), observability.SpanSubscribe)
	defer span.End()
	r = r.WithContext(ctx)

	if !Negotiate(r, MediaType) {
		h.reject(w, r, errors.NotAcceptable(MediaType))
		return
	}

	var status grip.ProxyStatus
	if h.opts.Proxy != nil {
		status = h.opts.Proxy.Detect(r)
	}
	if status.Proxied && status.NeedsSignature && !status.Signed {
		h.reject(w, r, errors.SignatureRequired())
		return
	}

	lastEventID := r.Header.Get(LastEventIDHeader)
	if lastEventID == resumeMarkerError {
		h.reject(w, r, errors.InvalidResumeMarker())
		return
	}

	channels, queried := h.resolveChannels(r)
	if len(channels) == 0 {
		param := ""
		if queried {
			param = h.opts.ChannelQueryParam
		}
		h.reject(w, r, errors.NoChannels(param))
		return
	}

	if status.Proxied {
		h.serveHold(w, r, channels)
		return
	}
	h.serveDirect(w, r, channels, lastEventID)
}

// resolveChannels collects the channels for one connection: the static
// set first, then query-supplied names when query sourcing applies,
// first occurrence winning on duplicates. The second return reports
// whether the query parameter was consulted.
func (h *Handler) resolveChannels(r *http.Request) ([]string, bool) {
	channels := append([]string(nil), h.opts.Channels...)

	queried := len(h.opts.Channels) == 0 || h.opts.AlwaysQueryChannels
	if queried {
		for _, name := range r.URL.Query()[h.opts.ChannelQueryParam] {
			if strings.TrimSpace(name) == "" {
				continue
			}
			channels = append(channels, name)
		}
	}
	return stream.Dedupe(channels), queried
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, appErr *errors.AppError) {
	observability.SetSpanError(r.Context(), appErr)
	h.log.Debug("stream request rejected", map[string]interface{}{
		logger.FieldStatus:     appErr.HTTPStatus,
		logger.FieldRemoteAddr: r.RemoteAddr,
		logger.FieldError:      appErr.Message,
	})
	http.Error(w, appErr.Message, appErr.HTTPStatus)
}

// serveHold answers a proxied request: hold directives bind the proxy to
// the prefixed channels, then the local response ends with the opening
// frame and the proxy carries the connection from there.
func (h *Handler) serveHold(w http.ResponseWriter, r *http.Request, channels []string) {
	proxied := make([]string, len(channels))
	for i, name := range channels {
		proxied[i] = h.opts.ChannelPrefix + name
	}

	h.opts.Proxy.StartHold(w).
		BindChannels(proxied...).
		SetKeepAlive(wire.Encode(wire.KeepAlive()), h.opts.KeepAliveInterval).
		Apply()

	w.Header().Set("Content-Type", MediaType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, wire.Encode(wire.StreamOpen()))

	h.log.Info("hold issued", map[string]interface{}{
		logger.FieldChannels:   channels,
		logger.FieldRemoteAddr: r.RemoteAddr,
	})
}

// serveDirect streams frames over the open response until the client
// disconnects or the stream fails.
func (h *Handler) serveDirect(w http.ResponseWriter, r *http.Request, channels []string, lastEventID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.log.Error("streaming not supported", map[string]interface{}{
			logger.FieldRemoteAddr: r.RemoteAddr,
		})
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	// Long-lived connection: the server's WriteTimeout must not apply.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.log.Warn("could not disable write deadline", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	ctx := r.Context()

	// Attach before the handshake leaves: events published while the
	// opening frame is in flight queue up instead of getting lost. The
	// bus records the subscriber gauge on attach and detach.
	sub := stream.Subscribe(h.bus, channels, stream.WithLastEventID(lastEventID))
	defer sub.Close()

	h.log.Info("stream attached", map[string]interface{}{
		logger.FieldListenerID: sub.ID(),
		logger.FieldChannels:   channels,
		logger.FieldRemoteAddr: r.RemoteAddr,
	})

	w.Header().Set("Content-Type", MediaType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := io.WriteString(w, wire.Encode(wire.StreamOpen())); err != nil {
		return
	}
	flusher.Flush()

	events := pipeline.Tap(sub.Events(), func(ctx context.Context, ev wire.Event) error {
		h.opts.Metrics.RecordFrameDelivered(ctx, ev.Type)
		return nil
	})
	frames := stream.Frames(events)

	// Frames are handed over one at a time; the pipeline pulls the next
	// event only after the previous frame left this channel, so a slow
	// client applies backpressure all the way to the subscription queue.
	frameCh := make(chan string)
	done := make(chan error, 1)
	go func() {
		done <- pipeline.Drain(frames, func(ctx context.Context, frame string) error {
			select {
			case frameCh <- frame:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}).Run(ctx)
	}()

	keepAlive := time.NewTicker(h.opts.KeepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("client disconnected", map[string]interface{}{
				logger.FieldListenerID: sub.ID(),
			})
			return

		case err := <-done:
			if err != nil && !stderrors.Is(err, context.Canceled) {
				perr := errors.PipelineFailed(err)
				observability.SetSpanError(ctx, perr)
				h.log.Error("stream pipeline failed", map[string]interface{}{
					logger.FieldListenerID: sub.ID(),
					logger.FieldError:      err.Error(),
				})
			}
			return

		case frame := <-frameCh:
			if _, err := io.WriteString(w, frame); err != nil {
				h.log.Debug("frame write failed", map[string]interface{}{
					logger.FieldListenerID: sub.ID(),
					logger.FieldError:      err.Error(),
				})
				return
			}
			flusher.Flush()

		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
