package main

import (
	"github.com/danmuck/kvwire/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServerCmd(opts *rootOptions) *cobra.Command {
	var (
		addr      string
		adminAddr string
		nodeID    string
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the key-value server until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServiceConfig(opts.resolveConfigPath())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.ListenAddr = addr
			}
			if cmd.Flags().Changed("admin") {
				cfg.AdminListenAddr = adminAddr
			}
			if cmd.Flags().Changed("node-id") {
				cfg.NodeID = nodeID
			}
			svc := server.NewServiceWithConfig(cfg, nil)
			log.Info().
				Str("node", svc.Config().NodeID).
				Str("addr", svc.Config().ListenAddr).
				Str("admin", svc.Config().AdminListenAddr).
				Uint32("max_body_bytes", svc.Config().Limits.MaxBodyBytes).
				Msg("starting kv server")
			return svc.Run()
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", server.DefaultServiceConfig().ListenAddr, "listen address for kv clients")
	cmd.Flags().StringVar(&adminAddr, "admin", "", "listen address for the admin HTTP surface (disabled when empty)")
	cmd.Flags().StringVar(&nodeID, "node-id", server.DefaultServiceConfig().NodeID, "node id used in logs and metrics")
	return cmd
}
