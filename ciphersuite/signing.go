package ciphersuite

import (
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

// SigningNonces are the single-use secret scalars drawn in signing round 1;
// spec.md section 3: "nonces: Option<SigningNonces> (secret, zero-on-drop)".
type SigningNonces struct {
	Hiding  *edwards25519.Scalar
	Binding *edwards25519.Scalar
}

// Zero overwrites both nonces in place.
func (n *SigningNonces) Zero() {
	if n == nil {
		return
	}
	zero := edwards25519.NewScalar()
	if n.Hiding != nil {
		n.Hiding.Set(zero)
	}
	if n.Binding != nil {
		n.Binding.Set(zero)
	}
}

// Encode serializes SigningNonces to its opaque byte form.
func (n *SigningNonces) Encode() []byte {
	b := appendScalar(nil, n.Hiding)
	b = appendScalar(b, n.Binding)
	return b
}

// DecodeSigningNonces parses the encoding produced by SigningNonces.Encode.
func DecodeSigningNonces(b []byte) (*SigningNonces, error) {
	hiding, b, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing nonces: %w", err)
	}
	binding, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing nonces: %w", err)
	}
	return &SigningNonces{Hiding: hiding, Binding: binding}, nil
}

// SigningCommitments are the public commitments to a party's signing nonces,
// broadcast in signing round 1.
type SigningCommitments struct {
	Hiding  *edwards25519.Point
	Binding *edwards25519.Point
}

// Encode serializes SigningCommitments to its opaque byte form.
func (c *SigningCommitments) Encode() []byte {
	b := appendPoint(nil, c.Hiding)
	b = appendPoint(b, c.Binding)
	return b
}

// DecodeSigningCommitments parses the encoding produced by
// SigningCommitments.Encode.
func DecodeSigningCommitments(b []byte) (*SigningCommitments, error) {
	hiding, b, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing commitments: %w", err)
	}
	binding, _, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing commitments: %w", err)
	}
	return &SigningCommitments{Hiding: hiding, Binding: binding}, nil
}

// Commit implements signing round 1 (FROST section 5.1): draw a hiding and a
// binding nonce from the signing share, and return their public
// commitments, per spec.md section 4.A's commit(signing_share, rng).
// Grounded on frost/signer.go's Round1 and generateNonce.
func Commit(signingShare *edwards25519.Scalar, rng io.Reader) (*SigningNonces, *SigningCommitments, error) {
	r := rngOrDefault(rng)

	hiding, err := generateNonce(signingShare, r)
	if err != nil {
		return nil, nil, fmt.Errorf("commit: hiding nonce generation failed: %w", err)
	}
	binding, err := generateNonce(signingShare, r)
	if err != nil {
		return nil, nil, fmt.Errorf("commit: binding nonce generation failed: %w", err)
	}

	nonces := &SigningNonces{Hiding: hiding, Binding: binding}
	commitments := &SigningCommitments{
		Hiding:  edwards25519.NewIdentityPoint().ScalarBaseMult(hiding),
		Binding: edwards25519.NewIdentityPoint().ScalarBaseMult(binding),
	}
	return nonces, commitments, nil
}

// generateNonce implements nonce_generate(secret) = H3(random_bytes(32) ||
// secret_enc), per FROST section 4.1, exactly as frost/signer.go's
// generateNonce does for BIP-340.
func generateNonce(secret *edwards25519.Scalar, rng io.Reader) (*edwards25519.Scalar, error) {
	b := make([]byte, 32)
	if _, err := io.ReadFull(rng, b); err != nil {
		return nil, err
	}
	return hash.H3(b, secret.Bytes()), nil
}

// SigningPackage is the deterministic per-ceremony bundle of commitments and
// message hash built by the coordinator and distributed for round 2;
// spec.md section 4.A's SigningPackage::new(commitments_map, message_hash).
type SigningPackage struct {
	MessageHash [32]byte
	Commitments map[Identifier]*SigningCommitments
}

// SigningPackageNew validates and builds a SigningPackage from the
// coordinator's collected commitments.
func SigningPackageNew(commitments map[Identifier]*SigningCommitments, messageHash [32]byte) (*SigningPackage, error) {
	if len(commitments) < 2 {
		return nil, ErrInsufficientCommitments
	}
	return &SigningPackage{MessageHash: messageHash, Commitments: commitments}, nil
}

// Encode serializes a SigningPackage to its opaque byte form.
func (p *SigningPackage) Encode() []byte {
	b := append([]byte(nil), p.MessageHash[:]...)
	b = appendUint16(b, uint16(len(p.Commitments)))
	for _, id := range sortedIdentifiers(p.Commitments) {
		b = appendIdentifier(b, id)
		b = append(b, p.Commitments[id].Encode()...)
	}
	return b
}

// DecodeSigningPackage parses the encoding produced by SigningPackage.Encode.
func DecodeSigningPackage(b []byte) (*SigningPackage, error) {
	if len(b) < 32 {
		return nil, fmt.Errorf("decode signing package: buffer too short")
	}
	var messageHash [32]byte
	copy(messageHash[:], b[:32])
	b = b[32:]

	count, b, err := readUint16(b)
	if err != nil {
		return nil, fmt.Errorf("decode signing package: %w", err)
	}
	commitments := make(map[Identifier]*SigningCommitments, count)
	for i := uint16(0); i < count; i++ {
		var id Identifier
		id, b, err = readIdentifier(b)
		if err != nil {
			return nil, fmt.Errorf("decode signing package commitment %d id: %w", i, err)
		}
		if len(b) < 64 {
			return nil, fmt.Errorf("decode signing package commitment %d: buffer too short", i)
		}
		c, err := DecodeSigningCommitments(b[:64])
		if err != nil {
			return nil, fmt.Errorf("decode signing package commitment %d: %w", i, err)
		}
		b = b[64:]
		commitments[id] = c
	}
	return &SigningPackage{MessageHash: messageHash, Commitments: commitments}, nil
}

// SignatureShare is a single participant's contribution to the aggregate
// signature.
type SignatureShare struct {
	Identifier Identifier
	Value      *edwards25519.Scalar
}

// Encode serializes a SignatureShare to its opaque byte form.
func (s *SignatureShare) Encode() []byte {
	b := appendIdentifier(nil, s.Identifier)
	b = appendScalar(b, s.Value)
	return b
}

// DecodeSignatureShare parses the encoding produced by
// SignatureShare.Encode.
func DecodeSignatureShare(b []byte) (*SignatureShare, error) {
	id, b, err := readIdentifier(b)
	if err != nil {
		return nil, fmt.Errorf("decode signature share: %w", err)
	}
	value, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode signature share: %w", err)
	}
	return &SignatureShare{Identifier: id, Value: value}, nil
}

// Signature is the final aggregated Schnorr signature.
type Signature struct {
	R *edwards25519.Point
	Z *edwards25519.Scalar
}

// Encode serializes a Signature to its opaque byte form.
func (s *Signature) Encode() []byte {
	b := appendPoint(nil, s.R)
	b = appendScalar(b, s.Z)
	return b
}

// DecodeSignature parses the encoding produced by Signature.Encode.
func DecodeSignature(b []byte) (*Signature, error) {
	r, b, err := readPoint(b)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	z, _, err := readScalar(b)
	if err != nil {
		return nil, fmt.Errorf("decode signature: %w", err)
	}
	return &Signature{R: r, Z: z}, nil
}

// Sign implements signing round 2 (FROST section 5.2): compute this
// party's signature share over pkg using its nonces and signing key, per
// spec.md section 4.A's sign(signing_package, nonces, signing_key_package).
// Grounded on frost/signer.go's Round2.
func Sign(pkg *SigningPackage, nonces *SigningNonces, keyPkg *SigningKeyPackage) (*SignatureShare, error) {
	if _, ok := pkg.Commitments[keyPkg.Identifier]; !ok {
		return nil, ErrCommitmentNotFound
	}

	bindingFactors := computeBindingFactors(pkg, keyPkg.GroupPublicKey)
	bindingFactor := bindingFactors[keyPkg.Identifier]

	groupCommitment := computeGroupCommitment(pkg, bindingFactors)
	lambda := deriveInterpolatingValue(keyPkg.Identifier, sortedIdentifiers(pkg.Commitments))
	challenge := computeChallenge(groupCommitment, keyPkg.GroupPublicKey, pkg.MessageHash)

	// sig_share = hiding_nonce + binding_nonce*binding_factor + lambda*sk_i*challenge
	bindingTerm := edwards25519.NewScalar().Multiply(nonces.Binding, bindingFactor)
	lambdaShare := edwards25519.NewScalar().Multiply(lambda, keyPkg.SigningShare)
	lambdaTerm := edwards25519.NewScalar().Multiply(lambdaShare, challenge)

	sigShare := edwards25519.NewScalar().Add(nonces.Hiding, bindingTerm)
	sigShare = edwards25519.NewScalar().Add(sigShare, lambdaTerm)

	return &SignatureShare{Identifier: keyPkg.Identifier, Value: sigShare}, nil
}

// Aggregate combines every participant's signature share into the final
// Schnorr signature, per spec.md section 4.A's aggregate(signing_package,
// shares_map, public_key_package). Grounded on frost/coordinator.go's
// Aggregate, extended with a per-share verification pass against each
// participant's verifying share before combining (without attributing
// fault to any one participant, per spec.md's identifiable-abort Non-goal).
func Aggregate(pkg *SigningPackage, shares map[Identifier]*SignatureShare, pubPkg *PublicKeyPackage) (*Signature, error) {
	bindingFactors := computeBindingFactors(pkg, pubPkg.GroupPublicKey)
	groupCommitment := computeGroupCommitment(pkg, bindingFactors)
	challenge := computeChallenge(groupCommitment, pubPkg.GroupPublicKey, pkg.MessageHash)
	participants := sortedIdentifiers(pkg.Commitments)

	z := edwards25519.NewScalar()
	for _, id := range sortedIdentifiers(shares) {
		share := shares[id]
		commitment, ok := pkg.Commitments[id]
		if !ok {
			return nil, fmt.Errorf("%w: share from unknown participant %s", ErrInvalidSignatureShare, id)
		}
		verifyingShare, ok := pubPkg.VerifyingShares[id]
		if !ok {
			return nil, fmt.Errorf("%w: no verifying share for participant %s", ErrInvalidSignatureShare, id)
		}
		lambda := deriveInterpolatingValue(id, participants)
		bindingFactor := bindingFactors[id]

		// Check: share_i*G == hiding_commitment_i + binding_factor_i*binding_commitment_i + lambda_i*challenge*verifying_share_i
		lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(share.Value)
		bindingPoint := edwards25519.NewIdentityPoint().ScalarMult(bindingFactor, commitment.Binding)
		lambdaChallenge := edwards25519.NewScalar().Multiply(lambda, challenge)
		verifyingPoint := edwards25519.NewIdentityPoint().ScalarMult(lambdaChallenge, verifyingShare)
		rhs := edwards25519.NewIdentityPoint().Add(commitment.Hiding, bindingPoint)
		rhs = edwards25519.NewIdentityPoint().Add(rhs, verifyingPoint)
		if lhs.Equal(rhs) != 1 {
			return nil, ErrInvalidSignatureShare
		}

		z.Add(z, share.Value)
	}

	return &Signature{R: groupCommitment, Z: z}, nil
}

// Verify checks signature against messageHash under groupPublicKey, per
// spec.md section 4.A's public_key_package.verifying_key().verify(...).
// Standard Ed25519-style Schnorr verification: z*G == R + H2(R||A||m)*A.
func Verify(groupPublicKey *edwards25519.Point, messageHash [32]byte, signature *Signature) error {
	challenge := hash.H2(signature.R.Bytes(), groupPublicKey.Bytes(), messageHash[:])
	lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(signature.Z)
	rhs := edwards25519.NewIdentityPoint().Add(signature.R, edwards25519.NewIdentityPoint().ScalarMult(challenge, groupPublicKey))
	if lhs.Equal(rhs) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

// computeBindingFactors implements compute_binding_factors (FROST section
// 4.4), grounded on frost/signer.go's computeBindingFactors, adapted from a
// uint64-indexed slice to an Identifier-keyed map.
func computeBindingFactors(pkg *SigningPackage, groupPublicKey *edwards25519.Point) map[Identifier]*edwards25519.Scalar {
	groupPublicKeyEncoded := groupPublicKey.Bytes()
	msgHash := hash.H4(pkg.MessageHash[:])
	encodedCommitmentHash := hash.H5(encodeGroupCommitmentList(pkg))
	rhoInputPrefix := concat(groupPublicKeyEncoded, msgHash, encodedCommitmentHash)

	factors := make(map[Identifier]*edwards25519.Scalar, len(pkg.Commitments))
	for id := range pkg.Commitments {
		rhoInput := concat(rhoInputPrefix, id.Bytes())
		factors[id] = hash.H1(rhoInput)
	}
	return factors
}

// computeGroupCommitment implements compute_group_commitment (FROST section
// 4.5), grounded on frost/signer.go's computeGroupCommitment.
func computeGroupCommitment(pkg *SigningPackage, bindingFactors map[Identifier]*edwards25519.Scalar) *edwards25519.Point {
	groupCommitment := edwards25519.NewIdentityPoint()
	for _, id := range sortedIdentifiers(pkg.Commitments) {
		commitment := pkg.Commitments[id]
		bindingNonce := edwards25519.NewIdentityPoint().ScalarMult(bindingFactors[id], commitment.Binding)
		groupCommitment.Add(groupCommitment, commitment.Hiding)
		groupCommitment.Add(groupCommitment, bindingNonce)
	}
	return groupCommitment
}

// encodeGroupCommitmentList implements encode_group_commitment_list (FROST
// section 4.3), grounded on frost/signer.go's encodeGroupCommitment.
func encodeGroupCommitmentList(pkg *SigningPackage) []byte {
	var b []byte
	for _, id := range sortedIdentifiers(pkg.Commitments) {
		commitment := pkg.Commitments[id]
		b = appendIdentifier(b, id)
		b = appendPoint(b, commitment.Hiding)
		b = appendPoint(b, commitment.Binding)
	}
	return b
}

// deriveInterpolatingValue implements derive_interpolating_value (FROST
// section 4.2), grounded on frost/signer.go's deriveInterpolatingValue,
// adapted from big.Int modular arithmetic over a uint64 index to scalar
// arithmetic over an Identifier.
func deriveInterpolatingValue(xi Identifier, participants []Identifier) *edwards25519.Scalar {
	num := edwards25519.NewScalar().Set(oneScalar())
	den := edwards25519.NewScalar().Set(oneScalar())

	xiScalar, err := xi.Scalar()
	if err != nil {
		panic(err) // Identifier values are validated on construction/decode.
	}

	for _, xj := range participants {
		if xj == xi {
			continue
		}
		xjScalar, err := xj.Scalar()
		if err != nil {
			panic(err)
		}
		num.Multiply(num, xjScalar)
		diff := edwards25519.NewScalar().Subtract(xjScalar, xiScalar)
		den.Multiply(den, diff)
	}

	denInv := edwards25519.NewScalar().Invert(den)
	return edwards25519.NewScalar().Multiply(num, denInv)
}

// computeChallenge implements the signature challenge computation (FROST
// section 4.6), grounded on frost/signer.go's computeChallenge.
func computeChallenge(groupCommitment, groupPublicKey *edwards25519.Point, messageHash [32]byte) *edwards25519.Scalar {
	return hash.H2(groupCommitment.Bytes(), groupPublicKey.Bytes(), messageHash[:])
}
