package ioutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedWriter_CloseFlushes(t *testing.T) {
	var dst bytes.Buffer
	w := WithBufferedWrites(&dst)

	_, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Zero(t, dst.Len(), "writes stay buffered until Close")

	require.NoError(t, w.Close())
	assert.Equal(t, "hello", dst.String())
}

func TestBufferedReader(t *testing.T) {
	var src []byte
	src = binary.AppendUvarint(src, 300)
	src = append(src, "payload"...)

	closes := 0
	r := WithBufferedReads(bytes.NewReader(src), CloserFunc(func() error {
		closes++
		return nil
	}))

	n, err := binary.ReadUvarint(r)
	require.NoError(t, err)
	assert.EqualValues(t, 300, n)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(rest))

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, closes)
}

func TestBufferedReader_NilCloser(t *testing.T) {
	r := WithBufferedReads(bytes.NewReader([]byte("x")), nil)
	require.NoError(t, r.Close())
}

func TestReaderWithCloser(t *testing.T) {
	errClose := errors.New("close failed")
	rc := ReaderWithCloser(bytes.NewReader([]byte("abc")), CloserFunc(func() error { return errClose }))

	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
	assert.ErrorIs(t, rc.Close(), errClose)
}
