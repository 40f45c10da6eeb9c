package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom"
	"github.com/vango-dev/loom/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		logLevel   string
		metrics    bool
		snapshots  string
	)

	cmd := &cobra.Command{
		Use:   "serve [demo]",
		Short: "Serve a demo live over websockets",
		Long: `Serve a built-in demo. The page is rendered on the server and a
websocket session streams updates as you interact with it.

Settings come from --config, then $LOOM_CONFIG, then a loom.{json,yaml,toml}
found by walking up from the working directory. Flags override them.

Examples:
  loom serve
  loom serve todo --addr :8080 --metrics
  loom serve --snapshots file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "counter"
			if len(args) == 1 {
				name = args[0]
			}
			root, err := lookupDemo(name)
			if err != nil {
				return err
			}

			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if metrics {
				cfg.Metrics.Enabled = true
			}
			if snapshots != "" {
				cfg.Snapshot.Backend = snapshots
			}

			app, err := loom.New(cfg, root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := newPalette(false)
			fmt.Fprint(cmd.OutOrStdout(), c.component(banner))
			fmt.Fprintf(cmd.OutOrStdout(), "  %s serving %s on http://%s\n\n", c.ok("✓"), name, cfg.Server.Addr)
			return app.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "f", "", "Config file")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Expose prometheus metrics at /metrics")
	cmd.Flags().StringVar(&snapshots, "snapshots", "", "Snapshot backend: none, file, redis or s3")

	return cmd
}
