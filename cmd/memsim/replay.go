package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/garethgeorge/memsim/internal/progress"
	"github.com/garethgeorge/memsim/internal/trace"
	"github.com/spf13/cobra"
)

func newReplayCmd(a *app) *cobra.Command {
	var interval int
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Verify a recorded trace by re-running it",
		Long: `The replay command rebuilds the engine described by a trace header, re-applies
every recorded action and checks each outcome and state fingerprint against
the recording. It exits non-zero at the first divergence.

Example:
  memsim replay session.trace`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open trace: %w", err)
			}
			defer f.Close()

			tracker := progress.NewLogTracker(a.logger, interval)
			stats, err := trace.Replay(cmd.Context(), f, tracker, a.logger)
			var div *trace.DivergenceError
			if errors.As(err, &div) {
				a.logger.Error("trace diverged", "seq", div.Seq, "field", div.Field)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "replayed %d events (%s, %d rejected, digest %s): ok\n",
				stats.Events, stats.Header.Mode, stats.Failures, stats.Header.Digest)
			r := a.renderer(out)
			if err := r.Table(stats.Engine.Columns(), stats.Engine.Rows()); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return r.Metrics(stats.Engine.Stats())
		},
	}
	cmd.Flags().IntVar(&interval, "progress-every", 1000, "Log progress every N events")
	return cmd
}
