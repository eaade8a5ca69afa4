package progress

import (
	"log/slog"
)

// Tracker receives progress updates from long running operations such as
// trace replay.
type Tracker interface {
	SetMessage(msg string)
	SetDone(n int)
	SetError(err error)
	MarkFinished()
}

type NoopTracker struct{}

var _ Tracker = NoopTracker{}

func (n NoopTracker) SetMessage(msg string) {}
func (n NoopTracker) SetDone(n2 int)        {}
func (n NoopTracker) SetError(err error)    {}
func (n NoopTracker) MarkFinished()         {}

// LogTracker reports progress through a structured logger, emitting a
// record every Interval completed items.
type LogTracker struct {
	Logger   *slog.Logger
	Interval int

	msg  string
	done int
}

var _ Tracker = (*LogTracker)(nil)

func NewLogTracker(logger *slog.Logger, interval int) *LogTracker {
	if interval <= 0 {
		interval = 1
	}
	return &LogTracker{Logger: logger, Interval: interval}
}

func (l *LogTracker) SetMessage(msg string) {
	l.msg = msg
	l.Logger.Info(msg)
}

func (l *LogTracker) SetDone(n int) {
	l.done = n
	if n%l.Interval == 0 {
		l.Logger.Debug("progress", "task", l.msg, "done", n)
	}
}

func (l *LogTracker) SetError(err error) {
	l.Logger.Error("task failed", "task", l.msg, "done", l.done, "error", err)
}

func (l *LogTracker) MarkFinished() {
	l.Logger.Info("task finished", "task", l.msg, "done", l.done)
}

// Done reports the last value passed to SetDone.
func (l *LogTracker) Done() int {
	return l.done
}
