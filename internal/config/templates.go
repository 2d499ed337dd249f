package config

import (
	"fmt"
	"os"
)

func Template() string {
	return fileTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(fileTemplate), 0o600)
}

const fileTemplate = `[server]
node_id = "kvwire.local"
addr = ":7070"
admin_addr = "127.0.0.1:7071"
cors_origins = ["http://localhost:3000"]
greeting = "Connected"
max_body_bytes = 8388608

[client]
addr = "127.0.0.1:7070"
connect_timeout = "5s"
max_connect_attempts = 5
backoff_initial = "250ms"
backoff_max = "5s"
backoff_multiplier = 2.0
backoff_jitter = true
`
