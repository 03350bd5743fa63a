package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eventstream/component"
	"github.com/kbukum/eventstream/config"
	"github.com/kbukum/eventstream/wire"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Name = "eventstream"
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}

func TestNewComponent_WiresPublisherToBus(t *testing.T) {
	c := NewComponent(testConfig(t), nil)

	var got []wire.Event
	l := c.Bus().Subscribe([]string{"a"}, func(_ string, ev wire.Event) {
		got = append(got, ev)
	})
	defer c.Bus().Unsubscribe(l)

	if err := c.Publisher().PublishEvent(context.Background(), wire.Event{Type: "x", Data: "1"}, "a"); err != nil {
		t.Fatalf("PublishEvent failed: %v", err)
	}
	if len(got) != 1 || got[0].Data != "1" {
		t.Errorf("expected publish to reach the bus, got %v", got)
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	c := NewComponent(testConfig(t), nil)
	reg := component.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	ctx := context.Background()
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	defer func() {
		if err := reg.StopAll(ctx); err != nil {
			t.Errorf("StopAll failed: %v", err)
		}
	}()

	h := c.Health(ctx)
	if h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %v", h)
	}
	if !strings.Contains(h.Message, "0 listeners") {
		t.Errorf("expected listener count in health message, got %q", h.Message)
	}
}

func TestNewComponent_ProxyConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.Grip.ControlURI = "http://localhost:5561"
	cfg.Grip.Key = "secret"

	c := NewComponent(cfg, nil)

	// A proxied request without a valid signature must be refused.
	r := httptest.NewRequest(http.MethodGet, "/events?channel=a", nil)
	r.Header.Set("Accept", MediaType)
	r.Header.Set("Grip-Sig", "not-a-valid-jwt")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 through configured proxy detection, got %d", w.Code)
	}
}

func TestGinHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c := NewComponent(testConfig(t), nil)
	router := gin.New()
	router.GET("/events", GinHandler(c.Handler()))

	r := httptest.NewRequest(http.MethodGet, "/events?channel=a", nil)
	r.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusNotAcceptable {
		t.Errorf("expected negotiation to run through the gin route, got %d", w.Code)
	}
}
