package ioutil

import (
	"errors"
	"io"
)

// CloserFunc adapts a function to io.Closer.
type CloserFunc func() error

func (f CloserFunc) Close() error {
	return f()
}

// MultiCloser closes each closer in order. Every closer runs even if an
// earlier one fails; the errors are joined.
type MultiCloser []io.Closer

func NewMultiCloser(closers ...io.Closer) MultiCloser {
	return MultiCloser(closers)
}

func (m MultiCloser) Close() error {
	var errs []error
	for _, c := range m {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func WriterWithCloser(w io.Writer, closer io.Closer) io.WriteCloser {
	return &writeCloser{
		Writer: w,
		closer: closer,
	}
}

type writeCloser struct {
	io.Writer
	closer io.Closer
}

var _ io.WriteCloser = (*writeCloser)(nil)

func (wc *writeCloser) Close() error {
	return wc.closer.Close()
}

func ReaderWithCloser(r io.Reader, closer io.Closer) io.ReadCloser {
	return &readCloser{
		Reader: r,
		closer: closer,
	}
}

type readCloser struct {
	io.Reader
	closer io.Closer
}

var _ io.ReadCloser = (*readCloser)(nil)

func (rc *readCloser) Close() error {
	return rc.closer.Close()
}
