// Package digest provides the 256 bit hash functions used to build tables.
package digest

import (
	"crypto/sha256"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Size is the length in bytes of every supported digest.
const Size = 32

// Digest is a 256 bit hash value.
type Digest [Size]byte

// Func hashes its input. Implementations are pure and safe for concurrent use.
type Func func(input []byte) Digest

// Algorithm names a supported hash function.
type Algorithm string

const (
	SHA256   Algorithm = "sha256"
	SHA3_256 Algorithm = "sha3-256"
	BLAKE3   Algorithm = "blake3"
)

var funcs = map[Algorithm]Func{
	SHA256:   func(input []byte) Digest { return sha256.Sum256(input) },
	SHA3_256: func(input []byte) Digest { return sha3.Sum256(input) },
	BLAKE3:   func(input []byte) Digest { return blake3.Sum256(input) },
}

// Algorithms lists the supported algorithm names in sorted order.
func Algorithms() []Algorithm {
	algorithms := maps.Keys(funcs)
	slices.Sort(algorithms)
	return algorithms
}

// ParseAlgorithm resolves an algorithm name, case-insensitively. The empty string selects SHA256.
func ParseAlgorithm(s string) (Algorithm, error) {
	if s == "" {
		return SHA256, nil
	}
	a := Algorithm(strings.ToLower(s))
	if _, ok := funcs[a]; !ok {
		return "", errors.Errorf("unknown digest algorithm %q; valid algorithms are %v", s, Algorithms())
	}
	return a, nil
}

// For returns the hash function for a.
func For(a Algorithm) (Func, error) {
	f, ok := funcs[a]
	if !ok {
		return nil, errors.Errorf("unknown digest algorithm %q", string(a))
	}
	return f, nil
}

const hexUpper = "0123456789ABCDEF"

// AppendHex appends the upper case hex encoding of d to dst.
func (d Digest) AppendHex(dst []byte) []byte {
	for _, b := range d {
		dst = append(dst, hexUpper[b>>4], hexUpper[b&0x0f])
	}
	return dst
}

func (d Digest) String() string {
	return string(d.AppendHex(make([]byte, 0, 2*Size)))
}
