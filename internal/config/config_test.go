package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/kvwire/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kvs.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestTemplateLoadsAndValidates(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "kvs.toml")
	require.NoError(t, WriteTemplate(path, false))
	require.Error(t, WriteTemplate(path, false), "template overwrote without force")
	require.NoError(t, WriteTemplate(path, true))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "kvwire.local", f.Server.NodeID)
	assert.Equal(t, "127.0.0.1:7071", f.Server.AdminAddr)
	assert.Equal(t, uint32(8<<20), f.Server.MaxBodyBytes)
	assert.Equal(t, 5, f.Client.MaxConnectAttempts)

	svc := f.Server.ServiceConfig()
	assert.Equal(t, ":7070", svc.ListenAddr)
	assert.Equal(t, "Connected", svc.Greeting)
	assert.Equal(t, []string{"http://localhost:3000"}, svc.CorsOrigins)

	cl := f.Client.ClientConfig()
	assert.Equal(t, "127.0.0.1:7070", cl.Address)
	assert.Equal(t, 5*time.Second, cl.Session.ConnectTimeout)
	assert.Equal(t, 250*time.Millisecond, cl.Session.Backoff.InitialDelay)
	assert.True(t, cl.Session.Backoff.Jitter)
}

func TestLoadFillsDefaults(t *testing.T) {
	testlog.Start(t)
	f, err := Load(writeFile(t, "[server]\ngreeting = \"hello\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", f.Server.Addr)
	assert.Equal(t, "hello", f.Server.Greeting)
	assert.Equal(t, "127.0.0.1:7070", f.Client.Addr)
	assert.Equal(t, uint32(8<<20), f.Server.ServiceConfig().Limits.MaxBodyBytes)
}

func TestLoadRejectsInvalid(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad addr":        "[server]\naddr = \"nope\"\n",
		"admin collides":  "[server]\naddr = \":7070\"\nadmin_addr = \":7070\"\n",
		"empty origin":    "[server]\ncors_origins = [\"\"]\n",
		"port-only dial":  "[client]\naddr = \":7070\"\n",
		"bad duration":    "[client]\nconnect_timeout = \"soon\"\n",
		"negative tries":  "[client]\nmax_connect_attempts = -1\n",
		"tiny multiplier": "[client]\nbackoff_multiplier = 0.5\n",
		"not toml":        "[server\n",
	}
	for name, body := range cases {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	testlog.Start(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "config load failed"))
}

func TestRenderRoundTrip(t *testing.T) {
	testlog.Start(t)
	f, err := Load(writeFile(t, Template()))
	require.NoError(t, err)
	out, err := Render(f)
	require.NoError(t, err)

	again, err := Load(writeFile(t, out))
	require.NoError(t, err)
	assert.Equal(t, f, again)
}
