package ioutil

import (
	"io"

	"golang.org/x/sync/errgroup"
)

// ParallelMultiWriter creates a writer that writes to multiple writers in parallel.
// Uses an internal pipe to each writer so a slow destination does not hold up the others.
// Uses a 64KB internal buffer to reduce the number of writes to each writer.
//
// Close flushes the buffer, closes every pipe and waits for all copies to
// finish. It does not close the underlying writers.
func ParallelMultiWriter(writers ...io.Writer) io.WriteCloser {
	if len(writers) == 0 {
		return WriterWithCloser(io.Discard, NewMultiCloser())
	}
	if len(writers) == 1 {
		return WriterWithCloser(writers[0], NewMultiCloser())
	}

	var eg errgroup.Group
	var pipeWriters []io.Writer
	var pipeClosers []io.Closer

	for _, w := range writers {
		pr, pw := io.Pipe()
		pipeWriters = append(pipeWriters, &detachingWriter{w: pw})
		pipeClosers = append(pipeClosers, pw)
		eg.Go(func() error {
			buffer := make([]byte, DefaultBufioSize) // will exactly match WithBufferedWrites buffer size
			_, err := io.CopyBuffer(w, pr, buffer)
			// Unblock the writer side if this destination failed.
			pr.CloseWithError(err)
			return err
		})
	}

	multiwriter := WithBufferedWrites(io.MultiWriter(pipeWriters...))
	closers := append([]io.Closer{multiwriter}, pipeClosers...)
	closers = append(closers, CloserFunc(eg.Wait))
	return WriterWithCloser(multiwriter, NewMultiCloser(closers...))
}

// detachingWriter stops forwarding after the first error so one failed
// destination does not stop io.MultiWriter from feeding the rest. The error
// itself surfaces from the copying goroutine.
type detachingWriter struct {
	w   io.Writer
	err error
}

func (d *detachingWriter) Write(p []byte) (int, error) {
	if d.err != nil {
		return len(p), nil
	}
	if _, err := d.w.Write(p); err != nil {
		d.err = err
	}
	return len(p), nil
}
