package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/garethgeorge/memsim/internal/config"
	"github.com/garethgeorge/memsim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	engine, err := sim.NewEngine(config.Default(), sim.FirstFit)
	require.NoError(t, err)
	_, err = engine.Allocate(150)
	require.NoError(t, err)

	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true})
	require.NoError(t, r.Table(engine.Columns(), engine.Rows()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2+5)
	assert.Contains(t, lines[0], "Block Number")
	assert.Contains(t, lines[0], "Occupied (Yes/No)")
	assert.Contains(t, lines[1], "┼")
	assert.Contains(t, lines[2], "150")
	assert.Contains(t, lines[2], "Yes")
	assert.Contains(t, lines[3], "No")

	// Every data row has the same rendered width.
	for _, l := range lines[3:] {
		assert.Equal(t, len([]rune(lines[2])), len([]rune(l)))
	}
}

func TestOutcome(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true})
	require.NoError(t, r.Outcome(sim.Outcome{Title: "Allocation Successful", Message: "Process allocated to Block 1"}))
	require.NoError(t, r.Outcome(sim.Outcome{Title: "Allocation Failed", Message: "No suitable block", Err: errors.New("x")}))
	require.NoError(t, r.Outcome(sim.Outcome{}))

	assert.Equal(t, "[Allocation Successful] Process allocated to Block 1\n[Allocation Failed] No suitable block\n", buf.String())
}

func TestMetrics(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, Options{NoColor: true})
	require.NoError(t, r.Metrics([]sim.Metric{
		{Name: "blocks", Value: 5},
		{Name: "total capacity", Value: 12345, Unit: "KB"},
	}))
	assert.Equal(t, "  blocks:          5\n  total capacity:  12,345 KB\n", buf.String())
}
