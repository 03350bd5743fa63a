package grip

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/eventstream/logger"
)

// SigHeader carries the proxy's signature JWT on proxied requests.
const SigHeader = "Grip-Sig"

// Config configures the GRIP collaborator.
type Config struct {
	// ControlURI is the base URI of the proxy's control endpoint
	// (e.g. "http://localhost:5561").
	ControlURI string `yaml:"control_uri" mapstructure:"control_uri" validate:"omitempty,url"`
	// ControlISS is the issuer claim for control-endpoint auth tokens.
	ControlISS string `yaml:"control_iss" mapstructure:"control_iss"`
	// Key is the shared key used both to verify Grip-Sig and to sign
	// control-endpoint tokens. When empty, signatures are neither required
	// nor produced.
	Key string `yaml:"key" mapstructure:"key"`
}

// Configured reports whether a control endpoint is set at all.
func (c Config) Configured() bool {
	return c.ControlURI != ""
}

// ProxyStatus is the result of proxy detection for one request.
type ProxyStatus struct {
	// Proxied reports that the request came through a GRIP proxy.
	Proxied bool
	// Signed reports that the proxy's signature was present and verified.
	Signed bool
	// NeedsSignature reports that this deployment requires signatures.
	NeedsSignature bool
}

// Proxy detects proxied requests and issues hold directives.
type Proxy struct {
	key []byte
	log *logger.Logger
}

// NewProxy creates a proxy collaborator from config.
func NewProxy(cfg Config) *Proxy {
	var key []byte
	if cfg.Key != "" {
		key = []byte(cfg.Key)
	}
	return &Proxy{
		key: key,
		log: logger.WithComponent("grip"),
	}
}

// Detect inspects one request and returns its proxy status. It is a pure
// read of the request and safe to call more than once.
func (p *Proxy) Detect(r *http.Request) ProxyStatus {
	status := ProxyStatus{NeedsSignature: len(p.key) > 0}

	sig := r.Header.Get(SigHeader)
	if sig == "" {
		return status
	}
	status.Proxied = true

	if len(p.key) == 0 {
		return status
	}

	token, err := jwt.Parse(sig, func(*jwt.Token) (interface{}, error) {
		return p.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		p.log.Warn("invalid proxy signature", map[string]interface{}{
			logger.FieldError: errString(err),
		})
		return status
	}

	status.Signed = true
	return status
}

func errString(err error) string {
	if err == nil {
		return "token invalid"
	}
	return err.Error()
}
