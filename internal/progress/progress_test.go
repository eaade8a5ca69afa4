package progress

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogTracker(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := NewLogTracker(logger, 2)

	tr.SetMessage("replaying trace")
	for i := 1; i <= 5; i++ {
		tr.SetDone(i)
	}
	tr.SetError(errors.New("diverged"))
	tr.MarkFinished()

	out := buf.String()
	assert.Contains(t, out, "replaying trace")
	assert.Contains(t, out, "done=4")
	assert.NotContains(t, out, "done=3")
	assert.Contains(t, out, "error=diverged")
	assert.Contains(t, out, "task finished")
	assert.Equal(t, 5, tr.Done())
}

func TestLogTracker_ZeroInterval(t *testing.T) {
	tr := NewLogTracker(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), 0)
	assert.Equal(t, 1, tr.Interval)
}

func TestNoopTracker(t *testing.T) {
	var tr Tracker = NoopTracker{}
	tr.SetMessage("x")
	tr.SetDone(1)
	tr.SetError(nil)
	tr.MarkFinished()
}
