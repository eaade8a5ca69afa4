// Package trace records simulation sessions as a compressed stream of
// checksummed frames and replays them against a fresh engine to verify that
// every outcome and every intermediate state is reproduced.
//
// A stream is zstd( frame(header) frame(event)... ) where a frame is a
// uvarint payload length, a protobuf wire format payload and the little
// endian xxhash64 of the payload.
package trace

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/garethgeorge/memsim/internal/digest"
	"github.com/garethgeorge/memsim/internal/ioutil"
	"github.com/garethgeorge/memsim/internal/sim"
	"github.com/klauspost/compress/zstd"
)

const maxFrameSize = 1 << 20

var (
	ErrFrameTooLarge    = errors.New("trace frame exceeds 1MiB")
	ErrChecksumMismatch = errors.New("trace frame checksum mismatch")
)

type Writer struct {
	zw     *zstd.Encoder
	closer io.Closer
	alg    digest.Algorithm

	payload []byte
	frame   []byte
	events  int
}

var _ sim.Recorder = (*Writer)(nil)

// NewWriter writes the header frame and returns a Writer for events. Close
// must be called to flush the stream; it does not close w.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	if h.Version == 0 {
		h.Version = Version
	}
	if h.Timestamp == 0 {
		h.Timestamp = time.Now().UnixNano()
	}
	if _, err := digest.New(h.Digest); err != nil {
		return nil, fmt.Errorf("trace header: %w", err)
	}

	bufw := ioutil.WithBufferedWrites(w)
	zw, err := zstd.NewWriter(bufw,
		zstd.WithEncoderCRC(true),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd writer: %w", err)
	}

	tw := &Writer{
		zw:     zw,
		closer: ioutil.NewMultiCloser(zw, bufw),
		alg:    h.Digest,
	}
	tw.payload = h.appendTo(tw.payload[:0])
	if err := tw.writeFrame(); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write trace header: %w", err)
	}
	return tw, nil
}

func (tw *Writer) writeFrame() error {
	if len(tw.payload) > maxFrameSize {
		return ErrFrameTooLarge
	}
	tw.frame = binary.AppendUvarint(tw.frame[:0], uint64(len(tw.payload)))
	tw.frame = append(tw.frame, tw.payload...)
	tw.frame = binary.LittleEndian.AppendUint64(tw.frame, xxhash.Sum64(tw.payload))
	_, err := tw.zw.Write(tw.frame)
	return err
}

// Record appends one event. It implements sim.Recorder.
func (tw *Writer) Record(out sim.Outcome, state []int64) error {
	fp, err := digest.State(tw.alg, state)
	if err != nil {
		return err
	}
	e := Event{
		Seq:         uint64(out.Seq),
		Op:          out.Action.Op,
		Arg:         out.Action.Arg,
		ErrKind:     uint64(allocerr.KindOf(out.Err)),
		Value:       out.Value,
		Fingerprint: fp,
	}
	tw.payload = e.appendTo(tw.payload[:0])
	if err := tw.writeFrame(); err != nil {
		return fmt.Errorf("write trace event %d: %w", e.Seq, err)
	}
	tw.events++
	return nil
}

// Events reports how many events were recorded.
func (tw *Writer) Events() int {
	return tw.events
}

func (tw *Writer) Close() error {
	return tw.closer.Close()
}

type Reader struct {
	Header Header

	in  *ioutil.BufferedReader
	buf []byte
}

// NewReader reads and validates the header frame.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	in := ioutil.WithBufferedReads(zr, ioutil.CloserFunc(func() error {
		zr.Close()
		return nil
	}))
	tr := &Reader{in: in, buf: make([]byte, 1024)}

	payload, err := tr.readFrame()
	if err != nil {
		tr.Close()
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("read trace header: %w", err)
	}
	if err := tr.Header.unmarshal(payload); err != nil {
		tr.Close()
		return nil, fmt.Errorf("decode trace header: %w", err)
	}
	if tr.Header.Version != Version {
		tr.Close()
		return nil, fmt.Errorf("trace version %d does not match current version %d", tr.Header.Version, Version)
	}
	return tr, nil
}

// readFrame returns the next payload, valid until the next call. io.EOF is
// returned only at a clean frame boundary.
func (tr *Reader) readFrame() ([]byte, error) {
	size, err := binary.ReadUvarint(tr.in)
	if err != nil {
		return nil, err
	}
	if size > maxFrameSize {
		return nil, ErrFrameTooLarge
	}
	if cap(tr.buf) < int(size)+8 {
		tr.buf = make([]byte, max(int(size)+8, cap(tr.buf)*2))
	}
	buf := tr.buf[:size+8]
	if _, err := io.ReadFull(tr.in, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	payload := buf[:size]
	if binary.LittleEndian.Uint64(buf[size:]) != xxhash.Sum64(payload) {
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}

// Iter yields events in recorded order. The yielded event is only valid
// until the next iteration.
func (tr *Reader) Iter() iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		var e Event
		for {
			payload, err := tr.readFrame()
			if err != nil {
				if err == io.EOF {
					return // Normal end of stream
				}
				yield(nil, err)
				return
			}
			if err := e.unmarshal(payload); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&e, nil) {
				return
			}
		}
	}
}

// Close releases the decoder. It does not close the source reader.
func (tr *Reader) Close() error {
	return tr.in.Close()
}
