// Package config loads, validates and renders the kvs TOML file.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const DefaultPath = "kvs.toml"

type File struct {
	Server ServerSection `toml:"server"`
	Client ClientSection `toml:"client"`
}

type ServerSection struct {
	NodeID       string   `toml:"node_id"`
	Addr         string   `toml:"addr"`
	AdminAddr    string   `toml:"admin_addr"`
	CorsOrigins  []string `toml:"cors_origins"`
	Greeting     string   `toml:"greeting"`
	MaxBodyBytes uint32   `toml:"max_body_bytes"`
}

type ClientSection struct {
	Addr               string  `toml:"addr"`
	ConnectTimeout     string  `toml:"connect_timeout"`
	MaxConnectAttempts int     `toml:"max_connect_attempts"`
	BackoffInitial     string  `toml:"backoff_initial"`
	BackoffMax         string  `toml:"backoff_max"`
	BackoffMultiplier  float64 `toml:"backoff_multiplier"`
	BackoffJitter      bool    `toml:"backoff_jitter"`
}

// Load reads path, fills defaults for empty fields and validates the result.
func Load(path string) (File, error) {
	var f File
	if err := loadToml(path, &f); err != nil {
		return File{}, err
	}
	f = f.withDefaults()
	if err := Validate(f); err != nil {
		return File{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return f, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func (f File) withDefaults() File {
	if strings.TrimSpace(f.Server.NodeID) == "" {
		f.Server.NodeID = "kvwire.local"
	}
	if strings.TrimSpace(f.Server.Addr) == "" {
		f.Server.Addr = ":7070"
	}
	if f.Server.Greeting == "" {
		f.Server.Greeting = "Connected"
	}
	if strings.TrimSpace(f.Client.Addr) == "" {
		f.Client.Addr = "127.0.0.1:7070"
	}
	return f
}

func Validate(f File) error {
	if err := ValidateServer(f.Server); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := ValidateClient(f.Client); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	return nil
}

func ValidateServer(s ServerSection) error {
	if strings.TrimSpace(s.NodeID) == "" {
		return fmt.Errorf("node_id is required")
	}
	if err := validateAddr("addr", s.Addr, true); err != nil {
		return err
	}
	if err := validateAddr("admin_addr", s.AdminAddr, false); err != nil {
		return err
	}
	if strings.TrimSpace(s.AdminAddr) != "" && strings.TrimSpace(s.AdminAddr) == strings.TrimSpace(s.Addr) {
		return fmt.Errorf("admin_addr must differ from addr")
	}
	for i, origin := range s.CorsOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors_origins[%d] is empty", i)
		}
	}
	return nil
}

func ValidateClient(c ClientSection) error {
	if err := validateAddr("addr", c.Addr, true); err != nil {
		return err
	}
	if strings.HasPrefix(strings.TrimSpace(c.Addr), ":") {
		return fmt.Errorf("addr needs a host to dial")
	}
	for _, d := range []struct{ name, value string }{
		{"connect_timeout", c.ConnectTimeout},
		{"backoff_initial", c.BackoffInitial},
		{"backoff_max", c.BackoffMax},
	} {
		if _, err := parseDuration(d.value); err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
	}
	if c.MaxConnectAttempts < 0 {
		return fmt.Errorf("max_connect_attempts must be >= 0")
	}
	if c.BackoffMultiplier != 0 && c.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff_multiplier must be >= 1")
	}
	return nil
}

func validateAddr(name, addr string, required bool) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		if required {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q: %w", name, addr, err)
	}
	return nil
}

// parseDuration treats "" as unset.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", v)
	}
	return d, nil
}

// Render encodes f back to TOML.
func Render(f File) (string, error) {
	out, err := toml.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
