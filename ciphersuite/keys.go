package ciphersuite

import (
	"fmt"

	"filippo.io/edwards25519"
)

// SigningKeyPackage is written once at DKG finalization and is this party's
// long-lived secret key material; spec.md section 3: "secret:
// SigningKeyPackage (this party's share; secret, zero-on-drop)."
type SigningKeyPackage struct {
	Identifier     Identifier
	MaxSigners     uint16
	MinSigners     uint16
	SigningShare   *edwards25519.Scalar
	GroupPublicKey *edwards25519.Point
}

// Zero overwrites the signing share in place. Called on scratch copies made
// for a single signing operation, per spec.md section 4.E: "then zeroize a
// scratch copy of keypair.secret."
func (k *SigningKeyPackage) Zero() {
	if k == nil || k.SigningShare == nil {
		return
	}
	k.SigningShare.Set(edwards25519.NewScalar())
}

// Copy returns a scratch copy of k suitable for use-then-zero in a single
// signing operation, leaving the original key package untouched.
func (k *SigningKeyPackage) Copy() *SigningKeyPackage {
	return &SigningKeyPackage{
		Identifier:     k.Identifier,
		MaxSigners:     k.MaxSigners,
		MinSigners:     k.MinSigners,
		SigningShare:   edwards25519.NewScalar().Set(k.SigningShare),
		GroupPublicKey: edwards25519.NewIdentityPoint().Set(k.GroupPublicKey),
	}
}

// Encode serializes a SigningKeyPackage to its opaque byte form.
func (k *SigningKeyPackage) Encode() []byte {
	b := appendIdentifier(nil, k.Identifier)
	b = appendUint16(b, k.MaxSigners)
	b = appendUint16(b, k.MinSigners)
	b = appendScalar(b, k.SigningShare)
	b = appendPoint(b, k.GroupPublicKey)
	return b
}

// DecodeSigningKeyPackage parses the encoding produced by
// SigningKeyPackage.Encode.
func DecodeSigningKeyPackage(b []byte) (*SigningKeyPackage, error) {
	id, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing key package: %w", err)
	}
	maxSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing key package: %w", err)
	}
	minSigners, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing key package: %w", err)
	}
	signingShare, b, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing key package share: %w", err)
	}
	groupPublicKey, _, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing key package group key: %w", err)
	}
	return &SigningKeyPackage{
		Identifier:     id,
		MaxSigners:     maxSigners,
		MinSigners:     minSigners,
		SigningShare:   signingShare,
		GroupPublicKey: groupPublicKey,
	}, nil
}

// PublicKeyPackage is the group-wide public artifact of DKG finalization:
// the group verifying key plus every participant's individual verifying
// share, used to check signature shares during aggregation. spec.md section
// 3: "public_package: PublicKeyPackage (group verifying key +
// per-participant verification shares)."
type PublicKeyPackage struct {
	GroupPublicKey  *edwards25519.Point
	VerifyingShares map[Identifier]*edwards25519.Point
}

// VerifyingKey returns the ciphersuite-level verifier bound to this
// package's group public key, per spec.md section 4.A:
// "public_key_package.verifying_key().verify(message, signature)".
func (p *PublicKeyPackage) VerifyingKey() *VerifyingKey {
	return &VerifyingKey{point: p.GroupPublicKey}
}

// Encode serializes a PublicKeyPackage to its opaque byte form.
func (p *PublicKeyPackage) Encode() []byte {
	b := appendPoint(nil, p.GroupPublicKey)
	b = appendUint16(b, uint16(len(p.VerifyingShares)))
	for _, id := range sortedIdentifiers(p.VerifyingShares) {
		b = appendIdentifier(b, id)
		b = appendPoint(b, p.VerifyingShares[id])
	}
	return b
}

// DecodePublicKeyPackage parses the encoding produced by
// PublicKeyPackage.Encode.
func DecodePublicKeyPackage(b []byte) (*PublicKeyPackage, error) {
	groupPublicKey, b, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode public key package group key: %w", err)
	}
	count, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode public key package: %w", err)
	}
	shares := make(map[Identifier]*edwards25519.Point, count)
	for i := uint16(0); i < count; i++ {
		var id Identifier
		var share *edwards25519.Point
		id, b, err = readIdentifier(b)
		if err != nil {
			return nil, fmt.Errorf("decode public key package share %d id: %w", i, err)
		}
		share, b, err = readPoint(b)
		if err != nil {
			return nil, fmt.Errorf("decode public key package share %d: %w", i, err)
		}
		shares[id] = share
	}
	return &PublicKeyPackage{GroupPublicKey: groupPublicKey, VerifyingShares: shares}, nil
}

// VerifyingKey wraps a group public key with the verify operation, per
// spec.md section 4.A's public_key_package.verifying_key().verify(...).
type VerifyingKey struct {
	point *edwards25519.Point
}

// Verify checks signature against messageHash under this verifying key.
func (v *VerifyingKey) Verify(messageHash [32]byte, signature *Signature) error {
	return Verify(v.point, messageHash, signature)
}
