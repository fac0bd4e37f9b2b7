package ciphersuite

import "errors"

// ErrIdentifierDerivation is returned when a candidate identifier reduces to
// the reserved zero scalar, or the supplied bytes are otherwise unusable;
// spec.md section 3: "Failure to produce a nonzero scalar surfaces as
// IdentifierDerivation."
var ErrIdentifierDerivation = errors.New("ciphersuite: unable to derive a nonzero identifier")

// ErrInvalidProofOfKnowledge is returned by Part2 when a peer's DKG
// round-1 package fails its attached Schnorr proof of knowledge.
var ErrInvalidProofOfKnowledge = errors.New("ciphersuite: invalid proof of knowledge in round1 package")

// ErrInvalidFeldmanShare is returned by Part3 when a peer's round-2 share
// does not match the Feldman commitment that peer broadcast in round 1.
var ErrInvalidFeldmanShare = errors.New("ciphersuite: round2 share does not match sender's commitment")

// ErrInsufficientCommitments is returned when fewer than two signing
// commitments are supplied to SigningPackageNew.
var ErrInsufficientCommitments = errors.New("ciphersuite: at least two signing commitments are required")

// ErrCommitmentNotFound is returned when the local party's own commitment
// is absent from a signing package it is asked to sign.
var ErrCommitmentNotFound = errors.New("ciphersuite: local identifier not present in signing package commitments")

// ErrInvalidSignatureShare is returned by Aggregate when a participant's
// signature share fails verification against its verifying share.
var ErrInvalidSignatureShare = errors.New("ciphersuite: one or more signature shares failed verification")

// ErrInvalidSignature is returned by Verify when a signature does not
// satisfy the Schnorr verification equation.
var ErrInvalidSignature = errors.New("ciphersuite: signature verification failed")
