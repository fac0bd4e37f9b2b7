package ciphersuite

import (
	"fmt"

	"filippo.io/edwards25519"
)

// Encode serializes a Round1Secret to its opaque byte form, per spec.md
// section 4.A: "Byte-form encode/decode for every transported value."
func (s *Round1Secret) Encode() []byte {
	b := appendIdentifier(nil, s.Identifier)
	b = appendUint16(b, s.MaxSigners)
	b = appendUint16(b, s.MinSigners)
	b = appendUint16(b, uint16(len(s.Coefficients)))
	for _, c := range s.Coefficients {
		b = appendScalar(b, c)
	}
	for _, c := range s.Commitment {
		b = appendPoint(b, c)
	}
	return b
}

// DecodeRound1Secret parses the encoding produced by Round1Secret.Encode.
func DecodeRound1Secret(b []byte) (*Round1Secret, error) {
	id, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 secret: %w", err)
	}
	maxSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 secret: %w", err)
	}
	minSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 secret: %w", err)
	}
	count, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 secret: %w", err)
	}
	coeffs := make([]*edwards25519.Scalar, count)
	for i := range coeffs {
		coeffs[i], b, err = readScalar(b)
		if err != nil {
			return nil, fmt.Errorf("decode round1 secret coefficient %d: %w", i, err)
		}
	}
	commitment := make([]*edwards25519.Point, count)
	for i := range commitment {
		commitment[i], b, err = readPoint(b)
		if err != nil {
			return nil, fmt.Errorf("decode round1 secret commitment %d: %w", i, err)
		}
	}
	return &Round1Secret{
		Identifier:   id,
		MaxSigners:   maxSigners,
		MinSigners:   minSigners,
		Coefficients: coeffs,
		Commitment:   commitment,
	}, nil
}

// Encode serializes a Round1Public to its opaque byte form.
func (p *Round1Public) Encode() []byte {
	b := appendIdentifier(nil, p.Identifier)
	b = appendUint16(b, uint16(len(p.Commitment)))
	for _, c := range p.Commitment {
		b = appendPoint(b, c)
	}
	b = appendPoint(b, p.ProofR)
	b = appendScalar(b, p.ProofMu)
	return b
}

// DecodeRound1Public parses the encoding produced by Round1Public.Encode.
func DecodeRound1Public(b []byte) (*Round1Public, error) {
	id, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 public: %w", err)
	}
	count, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 public: %w", err)
	}
	commitment := make([]*edwards25519.Point, count)
	for i := range commitment {
		commitment[i], b, err = readPoint(b)
		if err != nil {
			return nil, fmt.Errorf("decode round1 public commitment %d: %w", i, err)
		}
	}
	proofR, b, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 public proof R: %w", err)
	}
	proofMu, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode round1 public proof mu: %w", err)
	}
	return &Round1Public{
		Identifier: id,
		Commitment: commitment,
		ProofR:     proofR,
		ProofMu:    proofMu,
	}, nil
}

// Encode serializes a Round2Secret to its opaque byte form.
func (s *Round2Secret) Encode() []byte {
	b := appendIdentifier(nil, s.Identifier)
	b = appendUint16(b, s.MaxSigners)
	b = appendUint16(b, s.MinSigners)
	b = appendUint16(b, uint16(len(s.Commitment)))
	for _, c := range s.Commitment {
		b = appendPoint(b, c)
	}
	b = appendScalar(b, s.SecretShare)
	return b
}

// DecodeRound2Secret parses the encoding produced by Round2Secret.Encode.
func DecodeRound2Secret(b []byte) (*Round2Secret, error) {
	id, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 secret: %w", err)
	}
	maxSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 secret: %w", err)
	}
	minSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 secret: %w", err)
	}
	count, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 secret: %w", err)
	}
	commitment := make([]*edwards25519.Point, count)
	for i := range commitment {
		commitment[i], b, err = readPoint(b)
		if err != nil {
			return nil, fmt.Errorf("decode round2 secret commitment %d: %w", i, err)
		}
	}
	secretShare, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 secret share: %w", err)
	}
	return &Round2Secret{
		Identifier:  id,
		MaxSigners:  maxSigners,
		MinSigners:  minSigners,
		Commitment:  commitment,
		SecretShare: secretShare,
	}, nil
}

// Encode serializes a Round2Public to its opaque byte form.
func (p *Round2Public) Encode() []byte {
	b := appendIdentifier(nil, p.Sender)
	b = appendScalar(b, p.Value)
	return b
}

// DecodeRound2Public parses the encoding produced by Round2Public.Encode.
func DecodeRound2Public(b []byte) (*Round2Public, error) {
	sender, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 public: %w", err)
	}
	value, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode round2 public value: %w", err)
	}
	return &Round2Public{Sender: sender, Value: value}, nil
}
