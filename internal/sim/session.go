package sim

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/garethgeorge/memsim/internal/allocerr"
)

// Outcome is the result of applying one Action. Err is the typed allocator
// error, if any; it never indicates a broken engine.
type Outcome struct {
	Seq    int
	Action Action
	// Value is the block number or class capacity chosen by an allocation.
	Value   int
	Err     error
	Title   string
	Message string
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Recorder observes every applied action together with the engine state
// that followed it.
type Recorder interface {
	Record(out Outcome, state []int64) error
}

type sessionOptions struct {
	logger   *slog.Logger
	recorder Recorder
}

type SessionOption = func(*sessionOptions)

func WithLogger(logger *slog.Logger) func(*sessionOptions) {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

func WithRecorder(r Recorder) func(*sessionOptions) {
	return func(o *sessionOptions) {
		o.recorder = r
	}
}

// Session serializes actions against one engine. Actions are applied one at
// a time; a Session must not be shared between goroutines.
type Session struct {
	engine   Engine
	logger   *slog.Logger
	recorder Recorder
	seq      int
}

func NewSession(engine Engine, opts ...SessionOption) *Session {
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		engine:   engine,
		logger:   o.logger.With("mode", string(engine.Mode())),
		recorder: o.recorder,
	}
}

func (s *Session) Engine() Engine {
	return s.engine
}

// Apply runs a against the engine. Allocator failures are reported in the
// Outcome; the returned error is only set when the recorder fails.
func (s *Session) Apply(a Action) (Outcome, error) {
	s.seq++
	out := Outcome{Seq: s.seq, Action: a}

	switch a.Op {
	case OpAllocate:
		out.Value, out.Err = s.engine.Allocate(a.Arg)
	case OpRelease:
		out.Err = s.engine.Release(a.Arg)
	case OpReset:
		s.engine.Reset()
	case OpShow:
	default:
		return out, fmt.Errorf("apply action %d: unknown op %v", s.seq, a.Op)
	}
	out.Title, out.Message = s.engine.describe(a, out.Value, out.Err)

	if out.Err != nil {
		s.logger.Debug("action rejected", "seq", out.Seq, "action", a.String(), "kind", allocerr.KindOf(out.Err).String())
	} else {
		s.logger.Debug("action applied", "seq", out.Seq, "action", a.String(), "value", out.Value)
	}

	if s.recorder != nil {
		if err := s.recorder.Record(out, s.engine.State()); err != nil {
			return out, fmt.Errorf("record action %d: %w", out.Seq, err)
		}
	}
	return out, nil
}

// Run applies actions in order and stops at the first recorder failure.
func (s *Session) Run(actions []Action) ([]Outcome, error) {
	outcomes := make([]Outcome, 0, len(actions))
	for _, a := range actions {
		out, err := s.Apply(a)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
