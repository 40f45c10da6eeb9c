package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/host/memhost"
	"github.com/vango-dev/loom/pkg/slice"
)

// benchResult is one mount of the synthetic grid.
type benchResult struct {
	Duration time.Duration
	Slices   int
	Units    int
	Fibers   int
	Placed   int
}

func benchCmd() *cobra.Command {
	var (
		rows    int
		cols    int
		units   int
		runs    int
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure traversal of a synthetic tree",
		Long: `Mount a rows x cols table repeatedly with a fixed unit budget and
report how the work was sliced.

Examples:
  loom bench
  loom bench --rows 200 --cols 20 --units 32 --runs 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rows < 1 || cols < 1 || runs < 1 {
				return fmt.Errorf("rows, cols and runs must be positive")
			}
			results := make([]benchResult, 0, runs)
			for i := 0; i < runs; i++ {
				res, err := benchOnce(rows, cols, units)
				if err != nil {
					return err
				}
				results = append(results, res)
			}
			printBench(cmd, newPalette(noColor), rows, cols, units, results)
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 100, "Table rows")
	cmd.Flags().IntVar(&cols, "cols", 10, "Table columns")
	cmd.Flags().IntVarP(&units, "units", "u", 64, "Work units per slice")
	cmd.Flags().IntVarP(&runs, "runs", "n", 5, "Number of mounts")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}

func benchOnce(rows, cols, units int) (benchResult, error) {
	var res benchResult
	h := memhost.New()
	q := slice.NewQueue(slice.Units(units))
	r := fiber.New(h, q, fiber.WithObserver(fiber.ObserverFuncs{
		OnSlice: func(s fiber.SliceStats) {
			res.Slices++
			res.Units += s.Units
		},
		OnCommit: func(s fiber.CommitStats) {
			res.Fibers = s.Fibers
			res.Placed = s.Placed
		},
	}))

	start := time.Now()
	if err := r.Render(demo.Grid(rows, cols), h.Container("div")); err != nil {
		return res, err
	}
	q.Drain(0)
	res.Duration = time.Since(start)
	return res, r.Err()
}

func printBench(cmd *cobra.Command, c palette, rows, cols, units int, results []benchResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %dx%d grid, %d units per slice, %d runs\n\n",
		c.ok("bench"), rows, cols, units, len(results))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "run\tduration\tslices\tunits\tfibers\tplaced")
	durations := make([]time.Duration, 0, len(results))
	for i, r := range results {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n", i+1, r.Duration, r.Slices, r.Units, r.Fibers, r.Placed)
		durations = append(durations, r.Duration)
	}
	tw.Flush()

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	median := durations[len(durations)/2]
	last := results[len(results)-1]
	perUnit := time.Duration(0)
	if last.Units > 0 {
		perUnit = median / time.Duration(last.Units)
	}
	fmt.Fprintf(out, "\n%s median %s, %s per unit\n", c.dim("→"), median, perUnit)
}
