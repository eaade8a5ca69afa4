package trace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/garethgeorge/memsim/internal/digest"
	"github.com/garethgeorge/memsim/internal/progress"
	"github.com/garethgeorge/memsim/internal/sim"
)

// DivergenceError reports the first event whose replayed outcome differs
// from the recording.
type DivergenceError struct {
	Seq   uint64
	Field string
	Want  string
	Got   string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("replay diverged at event %d: %s: recorded %s, replayed %s", e.Seq, e.Field, e.Want, e.Got)
}

type ReplayStats struct {
	Header   Header
	Events   int
	Failures int
	Engine   sim.Engine
}

// Replay re-applies every recorded action to a freshly constructed engine
// and checks the outcome and the resulting state fingerprint of each one.
func Replay(ctx context.Context, r io.Reader, prog progress.Tracker, logger *slog.Logger) (ReplayStats, error) {
	if prog == nil {
		prog = progress.NoopTracker{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tr, err := NewReader(r)
	if err != nil {
		return ReplayStats{}, err
	}
	defer tr.Close()

	stats := ReplayStats{Header: tr.Header}
	cfg := tr.Header.Config()
	if err := cfg.Validate(); err != nil {
		return stats, fmt.Errorf("trace header: %w", err)
	}
	engine, err := sim.NewEngine(cfg, tr.Header.Mode)
	if err != nil {
		return stats, fmt.Errorf("trace header: %w", err)
	}
	stats.Engine = engine
	session := sim.NewSession(engine, sim.WithLogger(logger))

	prog.SetMessage(fmt.Sprintf("replaying %s trace", tr.Header.Mode))
	fail := func(err error) (ReplayStats, error) {
		prog.SetError(err)
		return stats, err
	}

	for e, err := range tr.Iter() {
		if err != nil {
			return fail(fmt.Errorf("read trace event %d: %w", stats.Events+1, err))
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		out, err := session.Apply(sim.Action{Op: e.Op, Arg: e.Arg})
		if err != nil {
			return fail(err)
		}
		if err := compareEvent(e, out, engine, cfg.DigestAlgorithm()); err != nil {
			return fail(err)
		}

		stats.Events++
		if out.Failed() {
			stats.Failures++
		}
		prog.SetDone(stats.Events)
	}

	prog.MarkFinished()
	return stats, nil
}

func compareEvent(e *Event, out sim.Outcome, engine sim.Engine, alg digest.Algorithm) error {
	if e.Seq != uint64(out.Seq) {
		return &DivergenceError{Seq: e.Seq, Field: "sequence", Want: fmt.Sprint(e.Seq), Got: fmt.Sprint(out.Seq)}
	}
	if kind := allocerr.KindOf(out.Err); uint64(kind) != e.ErrKind {
		return &DivergenceError{Seq: e.Seq, Field: "error", Want: allocerr.Kind(e.ErrKind).String(), Got: kind.String()}
	}
	if e.Value != out.Value {
		return &DivergenceError{Seq: e.Seq, Field: "value", Want: fmt.Sprint(e.Value), Got: fmt.Sprint(out.Value)}
	}
	fp, err := digest.State(alg, engine.State())
	if err != nil {
		return err
	}
	if !bytes.Equal(fp, e.Fingerprint) {
		return &DivergenceError{Seq: e.Seq, Field: "state", Want: fmt.Sprintf("%x", e.Fingerprint), Got: fmt.Sprintf("%x", fp)}
	}
	return nil
}
