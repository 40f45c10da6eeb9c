package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/pkg/render"
)

func renderCmd() *cobra.Command {
	var (
		clicks int
		target string
		pretty bool
		ids    bool
	)

	cmd := &cobra.Command{
		Use:   "render [demo]",
		Short: "Render a demo to HTML",
		Long: `Render a built-in demo to HTML on stdout.

The counter demo is rendered by default. --clicks dispatches click events
to the element named by --target before rendering.

Examples:
  loom render
  loom render counter --clicks 3
  loom render todo --pretty`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "counter"
			if len(args) == 1 {
				name = args[0]
			}
			m, err := mountDemo(name)
			if err != nil {
				return err
			}
			if err := m.click(target, clicks); err != nil {
				return err
			}
			r := render.NewRenderer(render.RendererConfig{Pretty: pretty, NodeIDs: ids})
			html, err := r.RenderChildren(m.container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "c", 0, "Number of clicks to dispatch before rendering")
	cmd.Flags().StringVarP(&target, "target", "t", "inc", "ID of the element to click")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the output")
	cmd.Flags().BoolVar(&ids, "ids", false, "Emit data-lid and data-on-* attributes")

	return cmd
}
