package config

import (
	"strings"

	"github.com/danmuck/kvwire/internal/client"
	"github.com/danmuck/kvwire/internal/protocol/frame"
	"github.com/danmuck/kvwire/internal/server"
)

// ServiceConfig maps the [server] table onto the listener config.
func (s ServerSection) ServiceConfig() server.ServiceConfig {
	cfg := server.DefaultServiceConfig()
	if v := strings.TrimSpace(s.NodeID); v != "" {
		cfg.NodeID = v
	}
	if v := strings.TrimSpace(s.Addr); v != "" {
		cfg.ListenAddr = v
	}
	cfg.AdminListenAddr = strings.TrimSpace(s.AdminAddr)
	if len(s.CorsOrigins) > 0 {
		cfg.CorsOrigins = append([]string(nil), s.CorsOrigins...)
	}
	if s.Greeting != "" {
		cfg.Greeting = s.Greeting
	}
	if s.MaxBodyBytes > 0 {
		cfg.Limits = frame.Limits{MaxBodyBytes: s.MaxBodyBytes}
	}
	return cfg
}

// ClientConfig maps the [client] table onto the dialer config. Call after
// ValidateClient; unparsable durations fall back to defaults.
func (c ClientSection) ClientConfig() client.Config {
	cfg := client.DefaultConfig()
	if v := strings.TrimSpace(c.Addr); v != "" {
		cfg.Address = v
	}
	if d, err := parseDuration(c.ConnectTimeout); err == nil && d > 0 {
		cfg.Session.ConnectTimeout = d
	}
	cfg.MaxConnectAttempts = c.MaxConnectAttempts
	if d, err := parseDuration(c.BackoffInitial); err == nil && d > 0 {
		cfg.Session.Backoff.InitialDelay = d
	}
	if d, err := parseDuration(c.BackoffMax); err == nil && d > 0 {
		cfg.Session.Backoff.MaxDelay = d
	}
	if c.BackoffMultiplier >= 1 {
		cfg.Session.Backoff.Multiplier = c.BackoffMultiplier
	}
	cfg.Session.Backoff.Jitter = c.BackoffJitter
	return cfg
}
