package ciphersuite

import (
	"fmt"
	"sort"

	"filippo.io/edwards25519"
)

// concat performs a concatenation of byte slices without modifying the
// slices passed as parameters, always returning a brand new backing array.
// Grounded on frost/hash.go's concat, same rationale.
func concat(a []byte, bs ...[]byte) []byte {
	c := make([]byte, len(a))
	copy(c, a)
	for _, b := range bs {
		c = append(c, b...)
	}
	return c
}

// sortedIdentifiers returns the keys of an identifier-keyed map in canonical
// ascending order. spec.md section 9 "Ordered aggregation inputs": every
// value fed to part2, part3, SigningPackage.new, and aggregate must be
// processed in identifier canonical byte order regardless of Go's
// unspecified map iteration order. Centralizing the sort here means callers
// can keep using plain Go maps end to end.
func sortedIdentifiers[V any](m map[Identifier]V) []Identifier {
	ids := make([]Identifier, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	return ids
}

func appendPoint(b []byte, p *edwards25519.Point) []byte {
	return append(b, p.Bytes()...)
}

func readPoint(b []byte) (*edwards25519.Point, []byte, error) {
	if len(b) < 32 {
		return nil, nil, fmt.Errorf("buffer too short to read a point")
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(b[:32])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid curve point: %w", err)
	}
	return p, b[32:], nil
}

func appendScalar(b []byte, s *edwards25519.Scalar) []byte {
	return append(b, s.Bytes()...)
}

func readScalar(b []byte) (*edwards25519.Scalar, []byte, error) {
	if len(b) < 32 {
		return nil, nil, fmt.Errorf("buffer too short to read a scalar")
	}
	s, err := edwards25519.NewScalar().SetCanonicalBytes(b[:32])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid scalar encoding: %w", err)
	}
	return s, b[32:], nil
}

func appendIdentifier(b []byte, id Identifier) []byte {
	return append(b, id[:]...)
}

func readIdentifier(b []byte) (Identifier, []byte, error) {
	if len(b) < IdentifierSize {
		return Identifier{}, nil, fmt.Errorf("buffer too short to read an identifier")
	}
	var id Identifier
	copy(id[:], b[:IdentifierSize])
	return id, b[IdentifierSize:], nil
}

// randomScalar draws a uniformly random scalar using rng, via wide
// reduction from 64 bytes of entropy. The result is not checked against
// zero.
func randomScalar(rng randReader) (*edwards25519.Scalar, error) {
	var wide [64]byte
	if _, err := rng.Read(wide[:]); err != nil {
		return nil, fmt.Errorf("failed to draw randomness: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(wide[:])
	if err != nil {
		return nil, fmt.Errorf("failed to reduce randomness to a scalar: %w", err)
	}
	return s, nil
}

// randReader is satisfied by io.Reader; declared locally to avoid importing
// io into every file that only needs randomScalar.
type randReader interface {
	Read(p []byte) (n int, err error)
}
