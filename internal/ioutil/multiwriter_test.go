package ioutil

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelMultiWriter(t *testing.T) {
	t.Run("no writers", func(t *testing.T) {
		wc := ParallelMultiWriter()
		n, err := wc.Write([]byte("hello"))
		assert.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.NoError(t, wc.Close())
	})

	t.Run("one writer", func(t *testing.T) {
		var buf bytes.Buffer
		wc := ParallelMultiWriter(&buf)
		n, err := wc.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.NoError(t, wc.Close())
		assert.Equal(t, "hello", buf.String())
	})

	t.Run("multiple writers", func(t *testing.T) {
		var buf1 bytes.Buffer
		var buf2 bytes.Buffer
		var buf3 bytes.Buffer
		wc := ParallelMultiWriter(&buf1, &buf2, &buf3)
		n, err := wc.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.NoError(t, wc.Close())
		assert.Equal(t, "hello", buf1.String())
		assert.Equal(t, "hello", buf2.String())
		assert.Equal(t, "hello", buf3.String())
	})

	t.Run("larger than buffer", func(t *testing.T) {
		payload := strings.Repeat("x", 3*DefaultBufioSize+17)
		var buf1 bytes.Buffer
		var buf2 bytes.Buffer
		wc := ParallelMultiWriter(&buf1, &buf2)
		_, err := io.Copy(wc, strings.NewReader(payload))
		require.NoError(t, err)
		require.NoError(t, wc.Close())
		assert.Equal(t, payload, buf1.String())
		assert.Equal(t, payload, buf2.String())
	})

	t.Run("multiple writers with a failing writer", func(t *testing.T) {
		var buf1 bytes.Buffer
		failingWriter := &failingWriter{}
		var buf3 bytes.Buffer
		wc := ParallelMultiWriter(&buf1, failingWriter, &buf3)
		n, err := wc.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)

		// Close will return an error because one of the writers failed.
		err = wc.Close()
		assert.ErrorIs(t, err, io.ErrShortWrite)

		// The other writers should have received the data.
		assert.Equal(t, "hello", buf1.String())
		assert.Equal(t, "hello", buf3.String())
	})
}

func TestMultiCloser(t *testing.T) {
	var order []string
	closer := NewMultiCloser(
		CloserFunc(func() error { order = append(order, "a"); return nil }),
		CloserFunc(func() error { order = append(order, "b"); return io.ErrClosedPipe }),
		CloserFunc(func() error { order = append(order, "c"); return nil }),
	)
	err := closer.Close()
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

// failingWriter is a writer that always fails on write.
type failingWriter struct{}

func (fw *failingWriter) Write(p []byte) (n int, err error) {
	return 0, io.ErrShortWrite
}
