package ioutil

import (
	"bufio"
	"io"
)

// DefaultBufioSize matches the copy buffer used by ParallelMultiWriter.
const DefaultBufioSize = 64 * 1024

// BufferedWriter is a bufio.Writer whose Close flushes. The wrapped writer
// is left open; its owner closes it.
type BufferedWriter struct {
	*bufio.Writer
}

var _ io.WriteCloser = (*BufferedWriter)(nil)

func WithBufferedWrites(w io.Writer) *BufferedWriter {
	return &BufferedWriter{Writer: bufio.NewWriterSize(w, DefaultBufioSize)}
}

func (b *BufferedWriter) Close() error {
	return b.Flush()
}

// BufferedReader reads through a bufio.Reader and releases its source on
// Close. It is an io.ByteReader so varint prefixes can be read in place.
type BufferedReader struct {
	*bufio.Reader
	rc io.ReadCloser
}

var (
	_ io.ReadCloser = (*BufferedReader)(nil)
	_ io.ByteReader = (*BufferedReader)(nil)
)

// WithBufferedReads buffers r. closer runs once on Close; pass nil when r
// has nothing to release.
func WithBufferedReads(r io.Reader, closer io.Closer) *BufferedReader {
	if closer == nil {
		closer = CloserFunc(func() error { return nil })
	}
	br := bufio.NewReaderSize(r, DefaultBufioSize)
	return &BufferedReader{
		Reader: br,
		rc:     ReaderWithCloser(br, closeOnce(closer)),
	}
}

func (b *BufferedReader) Read(p []byte) (int, error) {
	return b.rc.Read(p)
}

func (b *BufferedReader) Close() error {
	return b.rc.Close()
}

func closeOnce(c io.Closer) CloserFunc {
	closed := false
	return func() error {
		if closed {
			return nil
		}
		closed = true
		return c.Close()
	}
}
