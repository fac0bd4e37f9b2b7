package ciphersuite

import (
	"crypto/rand"
	"fmt"
	"io"

	"filippo.io/edwards25519"
)

// Round1Secret is the local-only artifact of DKG part 1: the party's secret
// polynomial coefficients (the constant term is this party's contribution
// to the group secret) plus a copy of the Feldman commitment, retained so
// part2 can hand it forward into Round2Secret. spec.md section 3:
// "part1_secret: Option<Round1Secret> (secret, zero-on-read-or-clear)".
type Round1Secret struct {
	Identifier   Identifier
	MaxSigners   uint16
	MinSigners   uint16
	Coefficients []*edwards25519.Scalar
	Commitment   []*edwards25519.Point
}

// Zero overwrites every scalar this secret carries with the zero scalar and
// drops the slice references, following spec.md section 9's secret
// lifecycle note for implementations without language-level zeroization.
func (s *Round1Secret) Zero() {
	if s == nil {
		return
	}
	zero := edwards25519.NewScalar()
	for i := range s.Coefficients {
		s.Coefficients[i].Set(zero)
	}
	s.Coefficients = nil
	s.Commitment = nil
}

// Round1Public is the commitment broadcast to every other party: the
// Feldman commitment to this party's polynomial, plus a Schnorr proof of
// knowledge of the constant-term coefficient binding it to Identifier.
type Round1Public struct {
	Identifier Identifier
	Commitment []*edwards25519.Point
	ProofR     *edwards25519.Point
	ProofMu    *edwards25519.Scalar
}

// Round2Secret carries forward what part3 needs after part2 has produced
// and consumed the per-recipient shares: this party's own evaluated share
// and the commitment needed to verify incoming round-2 shares are
// consistent with what this party itself already validated in part1.
// spec.md section 3: "part2_secret: Option<Round2Secret> (secret)".
type Round2Secret struct {
	Identifier  Identifier
	MaxSigners  uint16
	MinSigners  uint16
	Commitment  []*edwards25519.Point
	SecretShare *edwards25519.Scalar
}

// Zero overwrites the secret share and drops the commitment slice, per
// spec.md section 3's invariant: "part2_secret is zeroized as soon as
// Part3 consumes it."
func (s *Round2Secret) Zero() {
	if s == nil {
		return
	}
	if s.SecretShare != nil {
		s.SecretShare.Set(edwards25519.NewScalar())
	}
	s.SecretShare = nil
	s.Commitment = nil
}

// Round2Public is a single party's private share sent to one recipient,
// keyed by recipient in the outgoing map and by sender in the received map.
type Round2Public struct {
	Sender Identifier
	Value  *edwards25519.Scalar
}

// Part1 draws a random degree-(minSigners-1) polynomial for id, computes its
// Feldman commitment, and attaches a Schnorr proof of knowledge of the
// constant term, per spec.md section 4.A's part1(identifier, n, t, rng).
func Part1(id Identifier, maxSigners, minSigners uint16, rng io.Reader) (*Round1Secret, *Round1Public, error) {
	if id.IsZero() {
		return nil, nil, fmt.Errorf("part1: identifier must not be zero")
	}
	if minSigners < 2 || minSigners > maxSigners {
		return nil, nil, fmt.Errorf("part1: invalid group configuration (min=%d, max=%d)", minSigners, maxSigners)
	}

	coefficients := make([]*edwards25519.Scalar, minSigners)
	commitment := make([]*edwards25519.Point, minSigners)
	for i := range coefficients {
		s, err := randomScalar(rngOrDefault(rng))
		if err != nil {
			return nil, nil, fmt.Errorf("part1: failed to draw coefficient %d: %w", i, err)
		}
		coefficients[i] = s
		commitment[i] = edwards25519.NewIdentityPoint().ScalarBaseMult(s)
	}

	proofR, proofMu, err := proveKnowledge(id, coefficients[0], commitment[0], rng)
	if err != nil {
		return nil, nil, fmt.Errorf("part1: failed to build proof of knowledge: %w", err)
	}

	secret := &Round1Secret{
		Identifier:   id,
		MaxSigners:   maxSigners,
		MinSigners:   minSigners,
		Coefficients: coefficients,
		Commitment:   commitment,
	}
	public := &Round1Public{
		Identifier: id,
		Commitment: commitment,
		ProofR:     proofR,
		ProofMu:    proofMu,
	}
	return secret, public, nil
}

// proveKnowledge builds a Schnorr proof that the prover knows the discrete
// log of commitment[0] = a0*G, binding the proof to id so it cannot be
// replayed against a different party's commitment.
func proveKnowledge(id Identifier, a0 *edwards25519.Scalar, a0G *edwards25519.Point, rng io.Reader) (*edwards25519.Point, *edwards25519.Scalar, error) {
	k, err := randomScalar(rngOrDefault(rng))
	if err != nil {
		return nil, nil, err
	}
	R := edwards25519.NewIdentityPoint().ScalarBaseMult(k)
	mu := hash.HDkgProof(id.Bytes(), a0G.Bytes(), R.Bytes())
	// sigma = k + a0*mu
	sigma := edwards25519.NewScalar().MultiplyAdd(a0, mu, k)
	return R, sigma, nil
}

func verifyKnowledge(id Identifier, commitment0 *edwards25519.Point, proofR *edwards25519.Point, proofMu *edwards25519.Scalar) bool {
	expectedMu := hash.HDkgProof(id.Bytes(), commitment0.Bytes(), proofR.Bytes())
	// sigma*G == R + mu*a0G
	lhs := edwards25519.NewIdentityPoint().ScalarBaseMult(proofMu)
	rhs := edwards25519.NewIdentityPoint().Add(proofR, edwards25519.NewIdentityPoint().ScalarMult(expectedMu, commitment0))
	return lhs.Equal(rhs) == 1
}

// Part2 consumes this party's round-1 secret and the full set of received
// round-1 packages, verifies each package's proof of knowledge, evaluates
// this party's polynomial for every peer, and returns this party's own
// share plus the per-recipient outgoing shares, per spec.md section 4.A's
// part2(round1_secret, received_round1_map).
func Part2(secret *Round1Secret, received map[Identifier]*Round1Public) (*Round2Secret, map[Identifier]*Round2Public, error) {
	if secret == nil {
		return nil, nil, fmt.Errorf("part2: round1 secret already consumed")
	}

	for _, peerID := range sortedIdentifiers(received) {
		peer := received[peerID]
		if len(peer.Commitment) == 0 {
			return nil, nil, fmt.Errorf("part2: peer %s commitment is empty", peerID)
		}
		if !verifyKnowledge(peerID, peer.Commitment[0], peer.ProofR, peer.ProofMu) {
			return nil, nil, fmt.Errorf("%w: peer %s", ErrInvalidProofOfKnowledge, peerID)
		}
	}

	outgoing := make(map[Identifier]*Round2Public, len(received))
	for peerID := range received {
		x, err := peerID.Scalar()
		if err != nil {
			return nil, nil, err
		}
		value := evaluatePolynomial(secret.Coefficients, x)
		outgoing[peerID] = &Round2Public{Sender: secret.Identifier, Value: value}
	}

	selfX, err := secret.Identifier.Scalar()
	if err != nil {
		return nil, nil, err
	}
	ownShare := evaluatePolynomial(secret.Coefficients, selfX)

	round2Secret := &Round2Secret{
		Identifier:  secret.Identifier,
		MaxSigners:  secret.MaxSigners,
		MinSigners:  secret.MinSigners,
		Commitment:  secret.Commitment,
		SecretShare: ownShare,
	}
	return round2Secret, outgoing, nil
}

// Part3 consumes this party's round-2 secret, validates every received
// round-2 share against the sender's round-1 Feldman commitment, sums the
// shares into this party's final signing key share, and derives the group
// public key and every participant's verifying share, per spec.md section
// 4.A's part3(round2_secret, received_round1_map, received_round2_map).
func Part3(
	secret *Round2Secret,
	receivedPart1 map[Identifier]*Round1Public,
	receivedPart2 map[Identifier]*Round2Public,
) (*SigningKeyPackage, *PublicKeyPackage, error) {
	if secret == nil {
		return nil, nil, fmt.Errorf("part3: round2 secret already consumed")
	}

	selfX, err := secret.Identifier.Scalar()
	if err != nil {
		return nil, nil, err
	}

	signingShare := edwards25519.NewScalar().Set(secret.SecretShare)
	for _, senderID := range sortedIdentifiers(receivedPart2) {
		share := receivedPart2[senderID]
		senderCommitment, ok := receivedPart1[senderID]
		if !ok {
			return nil, nil, fmt.Errorf("part3: no round1 commitment on file for sender %s", senderID)
		}
		expected := evaluateCommitment(senderCommitment.Commitment, selfX)
		actual := edwards25519.NewIdentityPoint().ScalarBaseMult(share.Value)
		if expected.Equal(actual) != 1 {
			return nil, nil, fmt.Errorf("%w: sender %s", ErrInvalidFeldmanShare, senderID)
		}
		signingShare.Add(signingShare, share.Value)
	}

	// Every participant in the ceremony, including self, contributes its
	// constant-term commitment to the group public key.
	allCommitments := map[Identifier][]*edwards25519.Point{secret.Identifier: secret.Commitment}
	for id, pkg := range receivedPart1 {
		allCommitments[id] = pkg.Commitment
	}

	groupPublicKey := edwards25519.NewIdentityPoint()
	for _, id := range sortedIdentifiers(allCommitments) {
		groupPublicKey.Add(groupPublicKey, allCommitments[id][0])
	}

	verifyingShares := make(map[Identifier]*edwards25519.Point, len(allCommitments))
	for participantID := range allCommitments {
		px, err := participantID.Scalar()
		if err != nil {
			return nil, nil, err
		}
		sum := edwards25519.NewIdentityPoint()
		for _, ownerID := range sortedIdentifiers(allCommitments) {
			sum.Add(sum, evaluateCommitment(allCommitments[ownerID], px))
		}
		verifyingShares[participantID] = sum
	}

	keyPackage := &SigningKeyPackage{
		Identifier:     secret.Identifier,
		MaxSigners:     secret.MaxSigners,
		MinSigners:     secret.MinSigners,
		SigningShare:   signingShare,
		GroupPublicKey: groupPublicKey,
	}
	publicPackage := &PublicKeyPackage{
		GroupPublicKey:  groupPublicKey,
		VerifyingShares: verifyingShares,
	}
	return keyPackage, publicPackage, nil
}

// evaluatePolynomial evaluates f(x) = sum(coefficients[i] * x^i) via
// Horner's method.
func evaluatePolynomial(coefficients []*edwards25519.Scalar, x *edwards25519.Scalar) *edwards25519.Scalar {
	result := edwards25519.NewScalar()
	for i := len(coefficients) - 1; i >= 0; i-- {
		// result = result*x + coefficients[i]
		result = edwards25519.NewScalar().MultiplyAdd(result, x, coefficients[i])
	}
	return result
}

// evaluateCommitment evaluates the Feldman commitment [C0, C1, ..., Ct-1]
// at x, i.e. sum(Ci * x^i), without ever reconstructing the polynomial's
// coefficients, via repeated scalar multiplication of x's powers.
func evaluateCommitment(commitment []*edwards25519.Point, x *edwards25519.Scalar) *edwards25519.Point {
	result := edwards25519.NewIdentityPoint()
	power := edwards25519.NewScalar().Set(oneScalar())
	for _, c := range commitment {
		term := edwards25519.NewIdentityPoint().ScalarMult(power, c)
		result.Add(result, term)
		power = edwards25519.NewScalar().Multiply(power, x)
	}
	return result
}

func oneScalar() *edwards25519.Scalar {
	var one [32]byte
	one[0] = 1
	s, err := edwards25519.NewScalar().SetCanonicalBytes(one[:])
	if err != nil {
		panic(err)
	}
	return s
}

// rngOrDefault falls back to crypto/rand.Reader when the caller does not
// inject a source of randomness, per spec.md section 1's framing of
// randomness as "an injected capability; the core specifies only what must
// be drawn and how it must be protected."
func rngOrDefault(rng io.Reader) io.Reader {
	if rng == nil {
		return rand.Reader
	}
	return rng
}
