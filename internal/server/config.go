package server

import (
	"strings"

	"github.com/danmuck/kvwire/internal/protocol/frame"
)

const (
	ReplyOk       = "Ok"
	ReplyPong     = "Pong!"
	FailurePrefix = "Request failed"
)

// ServiceConfig configures the kv listener and its optional admin surface.
type ServiceConfig struct {
	NodeID          string
	ListenAddr      string
	AdminListenAddr string
	CorsOrigins     []string
	Greeting        string
	Limits          frame.Limits
}

func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		NodeID:          "kvwire.local",
		ListenAddr:      ":7070",
		AdminListenAddr: "",
		Greeting:        "Connected",
		Limits:          frame.DefaultLimits(),
	}
}

// WithDefaults fills empty fields from DefaultServiceConfig. Zero Limits
// means the default frame limit.
func (c ServiceConfig) WithDefaults() ServiceConfig {
	def := DefaultServiceConfig()
	if strings.TrimSpace(c.NodeID) == "" {
		c.NodeID = def.NodeID
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.Greeting == "" {
		c.Greeting = def.Greeting
	}
	if c.Limits == (frame.Limits{}) {
		c.Limits = def.Limits
	}
	c.AdminListenAddr = strings.TrimSpace(c.AdminListenAddr)
	return c
}

// failure renders the text reply for a request the store refused.
func failure(reason string) string {
	return FailurePrefix + ": " + reason
}
