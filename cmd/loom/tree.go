package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/vdom"
)

func treeCmd() *cobra.Command {
	var (
		clicks  int
		target  string
		props   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "tree [demo]",
		Short: "Print the committed fiber tree of a demo",
		Long: `Print the committed fiber tree of a built-in demo.

Each line shows a fiber's type, its last effect and, for components, the
number of hook cells it owns.

Examples:
  loom tree
  loom tree todo --props
  loom tree counter --clicks 2 --no-color`,
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
			printTree(cmd.OutOrStdout(), m.r, newPalette(noColor), props)
			return nil
		},
	}

	cmd.Flags().IntVarP(&clicks, "clicks", "c", 0, "Number of clicks to dispatch first")
	cmd.Flags().StringVarP(&target, "target", "t", "inc", "ID of the element to click")
	cmd.Flags().BoolVar(&props, "props", false, "Show element attributes")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}

func printTree(w io.Writer, r *fiber.Reconciler, c palette, showProps bool) {
	count := 0
	r.Walk(func(n fiber.Node) bool {
		count++
		indent := strings.Repeat("  ", n.Depth)
		var label string
		switch {
		case n.Depth == 0:
			label = c.dim("(root)")
		case n.Type.IsComponent():
			label = c.component(n.Type.String())
			if n.Hooks > 0 {
				label += c.dim(fmt.Sprintf(" hooks=%d", n.Hooks))
			}
		case n.Type.IsText():
			label = c.text(fmt.Sprintf("%q", n.Props.String(vdom.NodeValueProp)))
		default:
			label = c.element(n.Type.String())
			if showProps {
				label += formatProps(n.Props)
			}
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, label, c.dim(n.Effect.String()))
		return true
	})
	fmt.Fprintf(w, "%s\n", c.ok(fmt.Sprintf("%d fibers", count)))
}

// formatProps lists the non-event attributes of an element, sorted.
func formatProps(p vdom.Props) string {
	attrs := make(map[string]string, len(p))
	keys := make([]string, 0, len(p))
	for k, v := range p {
		if k == vdom.ChildrenProp || vdom.IsEventProp(k) {
			continue
		}
		s, ok := vdom.FormatAttr(v)
		if !ok {
			continue
		}
		attrs[k] = s
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%q", k, attrs[k])
	}
	return b.String()
}
