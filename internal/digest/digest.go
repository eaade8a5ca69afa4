// Package digest fingerprints allocator state so recorded sessions can be
// checked step by step on replay.
package digest

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/garethgeorge/memsim/internal/poolutil"
	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
)

type Algorithm string

const (
	Blake3 Algorithm = "blake3"
	SHA256 Algorithm = "sha256"

	Default = Blake3
)

func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case Blake3, SHA256:
		return a, nil
	case "":
		return Default, nil
	}
	return "", fmt.Errorf("unknown digest algorithm %q (want %q or %q)", s, Blake3, SHA256)
}

func New(a Algorithm) (hash.Hash, error) {
	switch a {
	case Blake3:
		return blake3.New(), nil
	case SHA256:
		return sha256.New(), nil
	}
	return nil, fmt.Errorf("unknown digest algorithm %q", a)
}

const idleHashers = 8

func resetHash(h hash.Hash) hash.Hash {
	h.Reset()
	return h
}

// hashers holds idle hashers per algorithm.
var hashers = map[Algorithm]*poolutil.Pool[hash.Hash]{
	Blake3: poolutil.NewPool(func() hash.Hash { return blake3.New() }, resetHash, idleHashers),
	SHA256: poolutil.NewPool(func() hash.Hash { return sha256.New() }, resetHash, idleHashers),
}

// State hashes a canonical state vector. Each value is written as a fixed
// 8-byte little endian integer, prefixed by the vector length, so vectors of
// different shapes never collide by concatenation.
func State(a Algorithm, state []int64) ([]byte, error) {
	pool, ok := hashers[a]
	if !ok {
		return nil, fmt.Errorf("unknown digest algorithm %q", a)
	}
	h := pool.Get()
	defer pool.Put(h)

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(state)))
	h.Write(buf[:])
	for _, v := range state {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	return h.Sum(nil), nil
}
