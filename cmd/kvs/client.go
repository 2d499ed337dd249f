package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/kvwire/internal/client"
	"github.com/spf13/cobra"
)

func newClientCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "client [METHOD KEY [VALUE]]",
		Short: "Connect to a server and run one command or an interactive prompt",
		Long: `With arguments, client sends one command and prints the reply.
Without arguments it reads commands from stdin:

  ` + client.Usage,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClientConfig(opts.resolveConfigPath())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			c, err := client.Dial(ctx, cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			if len(args) > 0 {
				return runOnce(ctx, cmd, c, strings.Join(args, " "))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s). Type help for commands, quit to exit.\n", c.Greeting(), c.RemoteAddr())
			err = client.RunREPL(ctx, c, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", client.DefaultConfig().Address, "server address")
	return cmd
}

func runOnce(ctx context.Context, cmd *cobra.Command, c *client.Client, line string) error {
	p, err := client.ParseCommand(line)
	if err != nil {
		return err
	}
	reply, err := c.Do(ctx, p)
	if err != nil {
		return err
	}
	if reply != "" {
		fmt.Fprintln(cmd.OutOrStdout(), reply)
	}
	return nil
}
