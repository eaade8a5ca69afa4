package sim

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	testCases := []struct {
		line    string
		want    Action
		wantErr bool
	}{
		{line: "alloc 150", want: Action{Op: OpAllocate, Arg: 150}},
		{line: "  Allocate   -5 ", want: Action{Op: OpAllocate, Arg: -5}},
		{line: "free 2", want: Action{Op: OpRelease, Arg: 2}},
		{line: "dealloc 200", want: Action{Op: OpRelease, Arg: 200}},
		{line: "reset", want: Action{Op: OpReset}},
		{line: "show", want: Action{Op: OpShow}},
		{line: "alloc", wantErr: true},
		{line: "alloc abc", wantErr: true},
		{line: "free 1 2", wantErr: true},
		{line: "reset now", wantErr: true},
		{line: "compact", wantErr: true},
		{line: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := ParseAction(tc.line)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseSizeAndIdentifier(t *testing.T) {
	v, err := ParseSize(" 120 ")
	require.NoError(t, err)
	assert.Equal(t, 120, v)

	_, err = ParseSize("12.5")
	require.ErrorIs(t, err, ErrInvalidInput)

	v, err = ParseIdentifier("3")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = ParseIdentifier("three")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseScript(t *testing.T) {
	script := `
# warm up
alloc 150
alloc 250

free 1
reset
show
`
	actions, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	assert.Equal(t, []Action{
		{Op: OpAllocate, Arg: 150},
		{Op: OpAllocate, Arg: 250},
		{Op: OpRelease, Arg: 1},
		{Op: OpReset},
		{Op: OpShow},
	}, actions)

	_, err = ParseScript(strings.NewReader("alloc 10\nfree x\n"))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 2")
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "alloc 150", Action{Op: OpAllocate, Arg: 150}.String())
	assert.Equal(t, "free 2", Action{Op: OpRelease, Arg: 2}.String())
	assert.Equal(t, "reset", Action{Op: OpReset}.String())
	assert.Equal(t, "op(9)", Op(9).String())
}
