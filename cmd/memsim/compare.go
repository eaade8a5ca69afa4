package main

import (
	"fmt"

	"github.com/garethgeorge/memsim/internal/sim"
	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	var script string
	var steps bool
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run one workload against every allocation policy",
		Long: `The compare command runs the same script against a fresh First-Fit and a
fresh Quick-Fit engine and prints the final state and statistics of each.

Release actions name a block number under First-Fit and a block size under
Quick-Fit, so the same "free" line can mean different things per policy.

Example:
  memsim compare --script workload.txt
  cat workload.txt | memsim compare`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actions, err := readScript(cmd.InOrStdin(), script)
			if err != nil {
				return err
			}
			results, err := sim.Compare(cmd.Context(), a.cfg, actions, a.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			r := a.renderer(out)
			if steps && len(results) == 2 {
				columns, rows := sim.Steps(results[0], results[1])
				if err := r.Table(columns, rows); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "== %s: %d actions, %d rejected ==\n", res.Mode, len(res.Outcomes), res.Failures())
				if err := r.Table(res.Columns, res.Rows); err != nil {
					return err
				}
				fmt.Fprintln(out)
				if err := r.Metrics(res.Stats); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&script, "script", "s", "-", "Script file with one action per line ('-' for stdin)")
	cmd.Flags().BoolVar(&steps, "steps", false, "Print the outcome of every action side by side")
	return cmd
}
