package provider

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Environment decides how nodes are reached.
type Environment string

const (
	// Server hosts can talk JSON-RPC to public nodes directly.
	Server Environment = "server"
	// Browser routes everything through vendor APIs that allow
	// cross-origin access.
	Browser Environment = "browser"
)

func ParseEnvironment(s string) (Environment, error) {
	switch Environment(strings.ToLower(strings.TrimSpace(s))) {
	case "", Server:
		return Server, nil
	case Browser:
		return Browser, nil
	}
	return "", fmt.Errorf("unknown environment %q (want %q or %q)", s, Server, Browser)
}

// PublicEndpoints are the default public mainnet nodes, most reliable
// first.
var PublicEndpoints = []string{
	"https://ethereum.publicnode.com",
	"https://cloudflare-eth.com",
	"https://rpc.flashbots.net/",
}

type SelectorConfig struct {
	Environment  Environment
	Endpoints    []string // defaults to PublicEndpoints
	VendorKeys   map[Vendor]string
	StallTimeout time.Duration
	HTTPClient   *http.Client
	Logger       log.FieldLogger
}

// Selector hands out freshly built providers. It keeps no connection state,
// so every call returns a provider the caller must Close.
type Selector struct {
	env          Environment
	endpoints    []string
	vendorKeys   map[Vendor]string
	stallTimeout time.Duration
	httpClient   *http.Client
	logger       log.FieldLogger
}

func NewSelector(cfg SelectorConfig) *Selector {
	s := &Selector{
		env:          cfg.Environment,
		endpoints:    cfg.Endpoints,
		vendorKeys:   cfg.VendorKeys,
		stallTimeout: cfg.StallTimeout,
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
	}
	if s.env == "" {
		s.env = Server
	}
	if len(s.endpoints) == 0 {
		s.endpoints = PublicEndpoints
	}
	if s.logger == nil {
		s.logger = discardLogger()
	}
	return s
}

func (s *Selector) Environment() Environment { return s.env }

// Endpoints returns a copy of the configured endpoint list.
func (s *Selector) Endpoints() []string {
	return append([]string(nil), s.endpoints...)
}

// GetProvider returns a single-endpoint client on the first endpoint, or
// the vendor default provider in the browser environment.
func (s *Selector) GetProvider() (Provider, error) {
	if s.env == Browser {
		p, err := s.vendorDefault()
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := DialJSONRPC(s.endpoints[0])
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetFallbackProvider returns a quorum-1 Fallback over every endpoint, each
// with priority equal to its 1-based position and weight 1. In the browser
// environment it is the vendor default provider with BrowserVendors.
func (s *Selector) GetFallbackProvider() (*Fallback, error) {
	if s.env == Browser {
		return s.vendorDefault()
	}

	members := make([]Member, 0, len(s.endpoints))
	for i, url := range s.endpoints {
		p, err := DialJSONRPC(url)
		if err != nil {
			for _, m := range members {
				m.Provider.Close()
			}
			return nil, err
		}
		members = append(members, Member{Provider: p, Priority: i + 1, Weight: 1})
	}
	return NewFallback(members, 1, s.fallbackOptions()...)
}

func (s *Selector) vendorDefault() (*Fallback, error) {
	return NewDefault(VendorOptions{
		Enabled:      BrowserVendors(),
		Keys:         s.vendorKeys,
		HTTPClient:   s.httpClient,
		StallTimeout: s.stallTimeout,
		Logger:       s.logger,
	})
}

func (s *Selector) fallbackOptions() []Option {
	opts := []Option{WithLogger(s.logger)}
	if s.stallTimeout != 0 {
		opts = append(opts, WithStallTimeout(s.stallTimeout))
	}
	return opts
}
