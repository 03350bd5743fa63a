package grip

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/eventstream/logger"
	"github.com/kbukum/eventstream/wire"
)

// Item is one publish unit in the proxy's control-plane representation.
type Item struct {
	Channel string  `json:"channel"`
	ID      string  `json:"id,omitempty"`
	PrevID  string  `json:"prev-id,omitempty"`
	Formats Formats `json:"formats"`
}

// Formats holds the per-transport renderings of an item.
type Formats struct {
	HTTPStream *HTTPStreamFormat `json:"http-stream,omitempty"`
}

// HTTPStreamFormat is the http-stream format: raw content appended to the
// held response body.
type HTTPStreamFormat struct {
	Content string `json:"content"`
}

type publishBody struct {
	Items []Item `json:"items"`
}

// Publisher pushes items to the proxy's control endpoint. The HTTP round
// trip is the external delivery leg: Publish returns only after the proxy
// acknowledged the item.
type Publisher struct {
	controlURI string
	iss        string
	key        []byte
	client     *http.Client
	log        *logger.Logger

	mu      sync.Mutex
	prevIDs map[string]string
}

// NewPublisher creates a control-plane publisher from config.
func NewPublisher(cfg Config) *Publisher {
	var key []byte
	if cfg.Key != "" {
		key = []byte(cfg.Key)
	}
	return &Publisher{
		controlURI: strings.TrimRight(cfg.ControlURI, "/"),
		iss:        cfg.ControlISS,
		key:        key,
		client:     &http.Client{Timeout: 30 * time.Second},
		log:        logger.WithComponent("grip"),
	}
}

// PublishEvent re-encodes ev as an http-stream item on the proxy channel
// and awaits the control endpoint's acknowledgment. When the event carries
// an ID, the previously published ID for the channel rides along as
// prev-id so the proxy can detect gaps.
func (p *Publisher) PublishEvent(ctx context.Context, channel string, ev wire.Event) error {
	item := Item{
		Channel: channel,
		ID:      ev.ID,
		Formats: Formats{
			HTTPStream: &HTTPStreamFormat{Content: wire.Encode(ev)},
		},
	}

	if ev.ID != "" {
		p.mu.Lock()
		item.PrevID = p.prevIDs[channel]
		p.mu.Unlock()
	}

	if err := p.publish(ctx, item); err != nil {
		return err
	}

	if ev.ID != "" {
		p.mu.Lock()
		if p.prevIDs == nil {
			p.prevIDs = make(map[string]string)
		}
		p.prevIDs[channel] = ev.ID
		p.mu.Unlock()
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, item Item) error {
	body, err := json.Marshal(publishBody{Items: []Item{item}})
	if err != nil {
		return fmt.Errorf("encoding publish body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.controlURI+"/publish/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if len(p.key) > 0 {
		token, err := p.controlToken()
		if err != nil {
			return fmt.Errorf("signing control token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("publishing to control endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("control endpoint returned status %d", resp.StatusCode)
	}

	p.log.Debug("item published", map[string]interface{}{
		logger.FieldChannel: item.Channel,
	})
	return nil
}

// controlToken signs a short-lived auth token for the control endpoint.
func (p *Publisher) controlToken() (string, error) {
	claims := jwt.MapClaims{
		"iss": p.iss,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
}
