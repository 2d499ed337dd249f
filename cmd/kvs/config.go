package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/kvwire/internal/client"
	"github.com/danmuck/kvwire/internal/config"
	"github.com/danmuck/kvwire/internal/server"
)

// loadFile validates path with the same rules as `kvs config validate` and
// returns the key set actually written in the file.
func loadFile(path string) (config.File, toml.MetaData, error) {
	f, err := config.Load(path)
	if err != nil {
		return config.File{}, toml.MetaData{}, err
	}
	var keys map[string]any
	meta, err := toml.DecodeFile(path, &keys)
	if err != nil {
		return config.File{}, toml.MetaData{}, fmt.Errorf("read config keys: %w", err)
	}
	return f, meta, nil
}

// loadServiceConfig overlays only the [server] keys present in path onto the defaults.
func loadServiceConfig(path string) (server.ServiceConfig, error) {
	cfg := server.DefaultServiceConfig()
	if path == "" {
		return cfg, nil
	}
	f, meta, err := loadFile(path)
	if err != nil {
		return server.ServiceConfig{}, fmt.Errorf("load server config: %w", err)
	}
	from := f.Server.ServiceConfig()

	if meta.IsDefined("server", "node_id") {
		cfg.NodeID = from.NodeID
	}
	if meta.IsDefined("server", "addr") {
		cfg.ListenAddr = from.ListenAddr
	}
	if meta.IsDefined("server", "admin_addr") {
		cfg.AdminListenAddr = from.AdminListenAddr
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.CorsOrigins = from.CorsOrigins
	}
	if meta.IsDefined("server", "greeting") {
		cfg.Greeting = from.Greeting
	}
	if meta.IsDefined("server", "max_body_bytes") {
		cfg.Limits = from.Limits
	}
	return cfg, nil
}

func loadClientConfig(path string) (client.Config, error) {
	cfg := client.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, meta, err := loadFile(path)
	if err != nil {
		return client.Config{}, fmt.Errorf("load client config: %w", err)
	}
	from := f.Client.ClientConfig()

	if meta.IsDefined("client", "addr") {
		cfg.Address = from.Address
	}
	if meta.IsDefined("client", "connect_timeout") {
		cfg.Session.ConnectTimeout = from.Session.ConnectTimeout
	}
	if meta.IsDefined("client", "max_connect_attempts") {
		cfg.MaxConnectAttempts = from.MaxConnectAttempts
	}
	if meta.IsDefined("client", "backoff_initial") {
		cfg.Session.Backoff.InitialDelay = from.Session.Backoff.InitialDelay
	}
	if meta.IsDefined("client", "backoff_max") {
		cfg.Session.Backoff.MaxDelay = from.Session.Backoff.MaxDelay
	}
	if meta.IsDefined("client", "backoff_multiplier") {
		cfg.Session.Backoff.Multiplier = from.Session.Backoff.Multiplier
	}
	if meta.IsDefined("client", "backoff_jitter") {
		cfg.Session.Backoff.Jitter = from.Session.Backoff.Jitter
	}
	return cfg, nil
}
