package allocerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	err := New(NoSuitableBlock, 600)
	assert.ErrorIs(t, err, ErrNoSuitableBlock)
	assert.NotErrorIs(t, err, ErrAlreadyFree)

	wrapped := fmt.Errorf("allocate: %w", err)
	assert.ErrorIs(t, wrapped, ErrNoSuitableBlock)
	assert.Equal(t, NoSuitableBlock, KindOf(wrapped))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, AlreadyFree, KindOf(New(AlreadyFree, 5)))
}

func TestValidateRequestSize(t *testing.T) {
	for _, size := range []int{0, -1, -500} {
		err := ValidateRequestSize(size)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidRequestSize)
	}
	assert.NoError(t, ValidateRequestSize(1))
}

func TestErrorMessages(t *testing.T) {
	testCases := []struct {
		err  *Error
		want string
	}{
		{New(NoSuitableBlock, 600), "no suitable block found for process size 600 KB"},
		{New(InvalidBlockIndex, 9), "invalid block number 9"},
		{New(AlreadyFree, 5), "block 5 is already free"},
		{New(UnknownBlockSize, 75), "invalid block size 75 KB"},
		{New(InvalidRequestSize, 0), "invalid request size 0 KB: must be positive"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
	assert.Equal(t, "kind(42)", Kind(42).String())
}
