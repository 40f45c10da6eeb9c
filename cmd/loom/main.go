package main

import (
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/vango-dev/loom"
	lerrors "github.com/vango-dev/loom/internal/errors"
)

// Build information set at build time.
var (
	commit = "none"
	date   = "unknown"
)

const banner = `
  ╷
  │  ┌─┐┌─┐┌┬┐
  └─┘└─┘└─┘┴ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		lerrors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "loom",
		Short: "Incremental component rendering for Go",
		Long: `Loom reconciles component trees in small time slices.

Render the built-in demos to HTML, inspect their fiber trees, measure
traversal of synthetic trees or serve a demo live over websockets.`,
		Version:       loom.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		renderCmd(),
		treeCmd(),
		benchCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// palette colors CLI output for the terminal it writes to.
type palette struct {
	p termenv.Profile
}

func newPalette(noColor bool) palette {
	if noColor {
		return palette{p: termenv.Ascii}
	}
	return palette{p: termenv.EnvColorProfile()}
}

func (c palette) paint(s, color string) string {
	return c.p.String(s).Foreground(c.p.Color(color)).String()
}

func (c palette) component(s string) string { return c.paint(s, "#c084fc") }
func (c palette) element(s string) string   { return c.paint(s, "#60a5fa") }
func (c palette) text(s string) string      { return c.paint(s, "#4ade80") }
func (c palette) dim(s string) string       { return c.paint(s, "#6b7280") }
func (c palette) ok(s string) string        { return c.paint(s, "#22c55e") }
