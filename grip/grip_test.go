package grip

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/eventstream/wire"
)

func signSig(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return token
}

func TestDetect_NotProxied(t *testing.T) {
	p := NewProxy(Config{Key: "secret"})
	r := httptest.NewRequest(http.MethodGet, "/events", nil)

	status := p.Detect(r)
	if status.Proxied {
		t.Error("expected not proxied without Grip-Sig")
	}
	if !status.NeedsSignature {
		t.Error("expected signature required when a key is configured")
	}
}

func TestDetect_SignedProxy(t *testing.T) {
	p := NewProxy(Config{Key: "secret"})
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	r.Header.Set(SigHeader, signSig(t, "secret", jwt.MapClaims{
		"iss": "pushpin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))

	status := p.Detect(r)
	if !status.Proxied {
		t.Error("expected proxied")
	}
	if !status.Signed {
		t.Error("expected signature to verify")
	}
}

func TestDetect_BadSignature(t *testing.T) {
	p := NewProxy(Config{Key: "secret"})
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	r.Header.Set(SigHeader, signSig(t, "wrong-key", jwt.MapClaims{
		"iss": "pushpin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}))

	status := p.Detect(r)
	if !status.Proxied {
		t.Error("expected proxied even with bad signature")
	}
	if status.Signed {
		t.Error("expected signature to fail verification")
	}
}

func TestDetect_NoKeyConfigured(t *testing.T) {
	p := NewProxy(Config{})
	r := httptest.NewRequest(http.MethodGet, "/events", nil)
	r.Header.Set(SigHeader, "anything")

	status := p.Detect(r)
	if !status.Proxied {
		t.Error("expected proxied")
	}
	if status.NeedsSignature {
		t.Error("expected no signature requirement without a key")
	}
	if status.Signed {
		t.Error("expected unsigned without a key to verify against")
	}
}

func TestHold_Apply(t *testing.T) {
	w := httptest.NewRecorder()

	StartHold(w).
		BindChannels("a", "b").
		SetKeepAlive("event: keep-alive\ndata: \n\n", 20*time.Second).
		Apply()

	h := w.Header()
	if h.Get(HoldHeader) != "stream" {
		t.Errorf("expected Grip-Hold 'stream', got %q", h.Get(HoldHeader))
	}

	channels := h.Values(ChannelHeader)
	if len(channels) != 2 || channels[0] != "a" || channels[1] != "b" {
		t.Errorf("expected channels [a b], got %v", channels)
	}

	ka := h.Get(KeepAliveHeader)
	if !strings.Contains(ka, `event: keep-alive\ndata: \n\n`) {
		t.Errorf("expected escaped keep-alive content, got %q", ka)
	}
	if !strings.Contains(ka, "format=cstring") {
		t.Errorf("expected cstring format, got %q", ka)
	}
	if !strings.Contains(ka, "timeout=20") {
		t.Errorf("expected timeout=20, got %q", ka)
	}
}

func TestEscapeCString(t *testing.T) {
	got := escapeCString("a\\b\nc\rd\te")
	want := `a\\b\nc\rd\te`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPublishEvent(t *testing.T) {
	var gotBody publishBody
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/publish/" {
			t.Errorf("expected path /publish/, got %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("decoding publish body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPublisher(Config{ControlURI: srv.URL, ControlISS: "app", Key: "secret"})

	ev := wire.Event{Type: "message", Data: "hello", ID: "1"}
	if err := p.PublishEvent(context.Background(), "events-room", ev); err != nil {
		t.Fatalf("PublishEvent failed: %v", err)
	}

	if len(gotBody.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(gotBody.Items))
	}
	item := gotBody.Items[0]
	if item.Channel != "events-room" {
		t.Errorf("expected channel 'events-room', got %q", item.Channel)
	}
	if item.ID != "1" {
		t.Errorf("expected id '1', got %q", item.ID)
	}
	if item.Formats.HTTPStream == nil || item.Formats.HTTPStream.Content != wire.Encode(ev) {
		t.Errorf("expected http-stream content to be the encoded frame, got %+v", item.Formats)
	}
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Errorf("expected bearer auth with key configured, got %q", gotAuth)
	}
}

func TestPublishEvent_ThreadsPrevID(t *testing.T) {
	var items []Item
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body publishBody
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		items = append(items, body.Items...)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPublisher(Config{ControlURI: srv.URL})

	_ = p.PublishEvent(context.Background(), "c", wire.Event{Type: "x", ID: "1"})
	_ = p.PublishEvent(context.Background(), "c", wire.Event{Type: "x", ID: "2"})

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].PrevID != "" {
		t.Errorf("expected empty prev-id on first publish, got %q", items[0].PrevID)
	}
	if items[1].PrevID != "1" {
		t.Errorf("expected prev-id '1' on second publish, got %q", items[1].PrevID)
	}
}

func TestPublishEvent_ControlError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewPublisher(Config{ControlURI: srv.URL})

	err := p.PublishEvent(context.Background(), "c", wire.Event{Type: "x"})
	if err == nil {
		t.Fatal("expected error on control endpoint failure")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestPublishEvent_Unreachable(t *testing.T) {
	p := NewPublisher(Config{ControlURI: "http://127.0.0.1:1"})

	err := p.PublishEvent(context.Background(), "c", wire.Event{Type: "x"})
	if err == nil {
		t.Fatal("expected error for unreachable control endpoint")
	}
}

func TestConfig_Configured(t *testing.T) {
	if (Config{}).Configured() {
		t.Error("expected empty config to be unconfigured")
	}
	if !(Config{ControlURI: "http://localhost:5561"}).Configured() {
		t.Error("expected config with control URI to be configured")
	}
}
