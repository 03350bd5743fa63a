package grip

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Hold directive headers understood by GRIP proxies.
const (
	HoldHeader      = "Grip-Hold"
	ChannelHeader   = "Grip-Channel"
	KeepAliveHeader = "Grip-Keep-Alive"

	holdModeStream = "stream"
)

// Hold builds the response headers that instruct the proxy to keep the
// client connection open. Apply writes the directive; afterwards the local
// response can end and the proxy takes over delivery.
type Hold struct {
	header            http.Header
	channels          []string
	keepAliveContent  string
	keepAliveInterval time.Duration
}

// StartHold begins a stream-mode hold on the given response.
func StartHold(w http.ResponseWriter) *Hold {
	return &Hold{header: w.Header()}
}

// StartHold makes Proxy satisfy the handler's hold-issuing collaborator.
func (p *Proxy) StartHold(w http.ResponseWriter) *Hold {
	return StartHold(w)
}

// BindChannels binds the hold to the named proxy channels.
func (h *Hold) BindChannels(names ...string) *Hold {
	h.channels = append(h.channels, names...)
	return h
}

// SetKeepAlive sets the heartbeat content the proxy injects while the
// connection is idle, and the interval between injections.
func (h *Hold) SetKeepAlive(content string, interval time.Duration) *Hold {
	h.keepAliveContent = content
	h.keepAliveInterval = interval
	return h
}

// Apply writes the hold directive headers.
func (h *Hold) Apply() {
	h.header.Set(HoldHeader, holdModeStream)
	for _, ch := range h.channels {
		h.header.Add(ChannelHeader, ch)
	}
	if h.keepAliveContent != "" {
		h.header.Set(KeepAliveHeader, fmt.Sprintf("%s; format=cstring; timeout=%d",
			escapeCString(h.keepAliveContent), int(h.keepAliveInterval.Seconds())))
	}
}

// escapeCString escapes control characters for the cstring keep-alive
// format, which must fit on a single header line.
func escapeCString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}
