package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/danmuck/kvwire/internal/config"
	"github.com/danmuck/kvwire/internal/logging"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "kvs",
		Short: "In-memory key-value store over a length-prefixed TCP protocol",
		Long: `kvs runs either the key-value server or an interactive client.

The server accepts any number of concurrent clients and keeps every key in
memory. Values set with SET are stored as raw text.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(opts.envFile); err != nil {
				return err
			}
			logging.ConfigureRuntime()
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default ./"+config.DefaultPath+" when present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with KVWIRE_* overrides; missing file is ignored")

	cmd.AddCommand(newServerCmd(opts))
	cmd.AddCommand(newClientCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	return cmd
}

func loadEnvFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	log.Debug().Str("path", path).Msg("loaded env file")
	return nil
}

// resolveConfigPath returns the explicit path, or the default file when it
// exists, or "" when there is nothing to load.
func (o *rootOptions) resolveConfigPath() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.DefaultPath
	}
	return ""
}
