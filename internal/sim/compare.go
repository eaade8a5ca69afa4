package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/garethgeorge/memsim/internal/config"
	"github.com/garethgeorge/memsim/internal/sliceutil"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of running a workload against one engine.
type Result struct {
	Mode     Mode
	Outcomes []Outcome
	Columns  []string
	Rows     []Row
	Stats    []Metric
}

// Failures counts rejected actions.
func (r Result) Failures() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Failed() {
			n++
		}
	}
	return n
}

// Compare runs the same actions against a fresh engine of every mode. The
// engines share no state, so each runs in its own goroutine. Results are
// returned in Modes() order.
func Compare(ctx context.Context, cfg config.Config, actions []Action, logger *slog.Logger) ([]Result, error) {
	modes := Modes()
	results := make([]Result, len(modes))

	eg, ctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		eg.Go(func() error {
			engine, err := NewEngine(cfg, mode)
			if err != nil {
				return fmt.Errorf("create %s engine: %w", mode, err)
			}
			var opts []SessionOption
			if logger != nil {
				opts = append(opts, WithLogger(logger))
			}
			session := NewSession(engine, opts...)

			outcomes := make([]Outcome, 0, len(actions))
			for _, a := range actions {
				if err := ctx.Err(); err != nil {
					return err
				}
				out, err := session.Apply(a)
				if err != nil {
					return fmt.Errorf("%s: %w", mode, err)
				}
				outcomes = append(outcomes, out)
			}
			results[i] = Result{
				Mode:     mode,
				Outcomes: outcomes,
				Columns:  engine.Columns(),
				Rows:     engine.Rows(),
				Stats:    engine.Stats(),
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	return results, nil
}

// Steps lines up the outcomes of two results by sequence number, one row per
// action. A side that never saw the action shows "-".
func Steps(left, right Result) ([]string, []Row) {
	columns := []string{"#", "Action", string(left.Mode), string(right.Mode)}
	bySeq := func(a, b Outcome) int { return a.Seq - b.Seq }

	var rows []Row
	for l, r := range sliceutil.OuterJoin(left.Outcomes, right.Outcomes, bySeq) {
		first := l
		if first.Seq == 0 {
			first = r
		}
		rows = append(rows, Row{intCell(first.Seq), {Text: first.Action.String()}, stepCell(l), stepCell(r)})
	}
	return columns, rows
}

func stepCell(o Outcome) Cell {
	if o.Seq == 0 {
		return Cell{Text: "-"}
	}
	if o.Failed() {
		return Cell{Text: o.Message, Highlight: HighlightRejected}
	}
	return Cell{Text: o.Message}
}
