package trace

import (
	"errors"
	"fmt"

	"github.com/garethgeorge/memsim/internal/config"
	"github.com/garethgeorge/memsim/internal/digest"
	"github.com/garethgeorge/memsim/internal/sim"
	"google.golang.org/protobuf/encoding/protowire"
)

const Version = 1

var ErrMalformed = errors.New("malformed trace record")

// Header describes the engine a trace was recorded against.
type Header struct {
	Version    uint64
	Mode       sim.Mode
	Digest     digest.Algorithm
	Blocks     []int
	Classes    []int
	Population int
	Strict     bool
	// Timestamp is the recording start time in unix nanoseconds.
	Timestamp int64
}

// HeaderFor captures the parts of cfg that determine engine behavior.
func HeaderFor(cfg config.Config, mode sim.Mode) Header {
	return Header{
		Version:    Version,
		Mode:       mode,
		Digest:     cfg.DigestAlgorithm(),
		Blocks:     cfg.FirstFit.Blocks,
		Classes:    cfg.QuickFit.Classes,
		Population: cfg.QuickFit.Population,
		Strict:     cfg.QuickFit.StrictRelease,
	}
}

// Config rebuilds the configuration a trace was recorded with.
func (h Header) Config() config.Config {
	cfg := config.Default()
	cfg.FirstFit.Blocks = h.Blocks
	cfg.QuickFit.Classes = h.Classes
	cfg.QuickFit.Population = h.Population
	cfg.QuickFit.StrictRelease = h.Strict
	cfg.Trace.Digest = string(h.Digest)
	return cfg
}

// Event is one recorded action and the state fingerprint that followed it.
type Event struct {
	Seq         uint64
	Op          sim.Op
	Arg         int
	ErrKind     uint64
	Value       int
	Fingerprint []byte
}

const (
	headerVersion    protowire.Number = 1
	headerMode       protowire.Number = 2
	headerDigest     protowire.Number = 3
	headerBlocks     protowire.Number = 4
	headerClasses    protowire.Number = 5
	headerPopulation protowire.Number = 6
	headerStrict     protowire.Number = 7
	headerTimestamp  protowire.Number = 8

	eventSeq         protowire.Number = 1
	eventOp          protowire.Number = 2
	eventArg         protowire.Number = 3
	eventErrKind     protowire.Number = 4
	eventValue       protowire.Number = 5
	eventFingerprint protowire.Number = 6
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSigned(b []byte, num protowire.Number, v int64) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendPacked(b []byte, num protowire.Number, vals []int) []byte {
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(int64(v)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func boolToUint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

func (h *Header) appendTo(b []byte) []byte {
	b = appendVarint(b, headerVersion, h.Version)
	b = appendString(b, headerMode, string(h.Mode))
	b = appendString(b, headerDigest, string(h.Digest))
	b = appendPacked(b, headerBlocks, h.Blocks)
	b = appendPacked(b, headerClasses, h.Classes)
	b = appendSigned(b, headerPopulation, int64(h.Population))
	b = appendVarint(b, headerStrict, boolToUint(h.Strict))
	b = appendSigned(b, headerTimestamp, h.Timestamp)
	return b
}

func (e *Event) appendTo(b []byte) []byte {
	b = appendVarint(b, eventSeq, e.Seq)
	b = appendVarint(b, eventOp, uint64(e.Op))
	b = appendSigned(b, eventArg, int64(e.Arg))
	b = appendVarint(b, eventErrKind, e.ErrKind)
	b = appendSigned(b, eventValue, int64(e.Value))
	b = protowire.AppendTag(b, eventFingerprint, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Fingerprint)
	return b
}

// field is one decoded key/value. Only varint and bytes fields are used.
type field struct {
	num   protowire.Number
	typ   protowire.Type
	v     uint64
	bytes []byte
}

// walkFields calls fn for every field in b, skipping unknown wire types so
// newer writers can add fields.
func walkFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func decodePacked(b []byte) ([]int, error) {
	var vals []int
	for len(b) > 0 {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: packed value: %v", ErrMalformed, protowire.ParseError(n))
		}
		vals = append(vals, int(protowire.DecodeZigZag(v)))
		b = b[n:]
	}
	return vals, nil
}

func (h *Header) unmarshal(b []byte) error {
	*h = Header{}
	return walkFields(b, func(f field) error {
		var err error
		switch f.num {
		case headerVersion:
			h.Version = f.v
		case headerMode:
			h.Mode = sim.Mode(f.bytes)
		case headerDigest:
			h.Digest = digest.Algorithm(f.bytes)
		case headerBlocks:
			h.Blocks, err = decodePacked(f.bytes)
		case headerClasses:
			h.Classes, err = decodePacked(f.bytes)
		case headerPopulation:
			h.Population = int(protowire.DecodeZigZag(f.v))
		case headerStrict:
			h.Strict = f.v != 0
		case headerTimestamp:
			h.Timestamp = protowire.DecodeZigZag(f.v)
		}
		return err
	})
}

func (e *Event) unmarshal(b []byte) error {
	*e = Event{}
	return walkFields(b, func(f field) error {
		switch f.num {
		case eventSeq:
			e.Seq = f.v
		case eventOp:
			e.Op = sim.Op(f.v)
		case eventArg:
			e.Arg = int(protowire.DecodeZigZag(f.v))
		case eventErrKind:
			e.ErrKind = f.v
		case eventValue:
			e.Value = int(protowire.DecodeZigZag(f.v))
		case eventFingerprint:
			e.Fingerprint = append([]byte(nil), f.bytes...)
		}
		return nil
	})
}
