package store

// SetKeypair persists the finalized DKG output this party signs with.
func (s *Store) SetKeypair(record *KeypairRecord) error {
	blob := &keypairBlob{
		Identifier:    record.Identifier,
		MaxSigners:    record.MaxSigners,
		MinSigners:    record.MinSigners,
		SigningKey:    record.SigningKey,
		PublicPackage: record.PublicPackage,
		Participants:  record.Participants,
	}
	raw, err := encodeCBOR(blob)
	if err != nil {
		return newErr("set keypair", KindCorrupt, err)
	}
	if err := s.kv.Put(KeyspaceKeypair, singletonKey, raw); err != nil {
		return newErr("set keypair", KindIO, err)
	}
	return nil
}

// GetKeypair returns the stored keypair record. This is a plain read, not
// a consuming one: spec.md section 4.C lists get_keypair among the
// signing-side derived operations without the consume-on-read qualifier it
// gives the DKG secrets.
func (s *Store) GetKeypair() (*KeypairRecord, error) {
	raw, found, err := s.kv.Get(KeyspaceKeypair, singletonKey)
	if err != nil {
		return nil, newErr("get keypair", KindIO, err)
	}
	if !found {
		return nil, newErr("get keypair", KindNotFound, nil)
	}
	var blob keypairBlob
	if err := decodeCBOR(raw, &blob); err != nil {
		return nil, newErr("get keypair", KindCorrupt, err)
	}
	return &KeypairRecord{
		Identifier:    blob.Identifier,
		MaxSigners:    blob.MaxSigners,
		MinSigners:    blob.MinSigners,
		SigningKey:    blob.SigningKey,
		PublicPackage: blob.PublicPackage,
		Participants:  blob.Participants,
	}, nil
}

func messageHashKey(hash [32]byte) []byte {
	return hash[:]
}

// SetCoordinatorMessage persists the coordinator-side bookkeeping record
// for messageHash.
func (s *Store) SetCoordinatorMessage(messageHash [32]byte, msg *CoordinatorMessage) error {
	blob := &coordinatorMessageBlob{
		State:           msg.State,
		Participants:    msg.Participants,
		IsSigner:        msg.IsSigner,
		Nonces:          msg.Nonces,
		SigningPackage:  msg.SigningPackage,
		Commitments:     msg.Commitments,
		SignatureShares: msg.SignatureShares,
	}
	raw, err := encodeCBOR(blob)
	if err != nil {
		return newErr("set coordinator message", KindCorrupt, err)
	}
	if err := s.kv.Put(KeyspaceCoordinatorMessages, messageHashKey(messageHash), raw); err != nil {
		return newErr("set coordinator message", KindIO, err)
	}
	return nil
}

// GetCoordinatorMessage returns the coordinator-side record for
// messageHash, if one exists.
func (s *Store) GetCoordinatorMessage(messageHash [32]byte) (*CoordinatorMessage, bool, error) {
	raw, found, err := s.kv.Get(KeyspaceCoordinatorMessages, messageHashKey(messageHash))
	if err != nil {
		return nil, false, newErr("get coordinator message", KindIO, err)
	}
	if !found {
		return nil, false, nil
	}
	var blob coordinatorMessageBlob
	if err := decodeCBOR(raw, &blob); err != nil {
		return nil, false, newErr("get coordinator message", KindCorrupt, err)
	}
	return &CoordinatorMessage{
		State:           blob.State,
		Participants:    blob.Participants,
		IsSigner:        blob.IsSigner,
		Nonces:          blob.Nonces,
		SigningPackage:  blob.SigningPackage,
		Commitments:     blob.Commitments,
		SignatureShares: blob.SignatureShares,
	}, true, nil
}

// DeleteCoordinatorMessage removes the coordinator-side record for
// messageHash, per spec.md section 4.E's post-Aggregate removal.
func (s *Store) DeleteCoordinatorMessage(messageHash [32]byte) error {
	if err := s.kv.Delete(KeyspaceCoordinatorMessages, messageHashKey(messageHash)); err != nil {
		return newErr("delete coordinator message", KindIO, err)
	}
	return nil
}

// ListCoordinatorMessages returns every in-flight coordinator record,
// keyed by message hash.
func (s *Store) ListCoordinatorMessages() (map[[32]byte]*CoordinatorMessage, error) {
	out := make(map[[32]byte]*CoordinatorMessage)
	err := s.kv.Iterate(KeyspaceCoordinatorMessages, func(key, value []byte) error {
		var hash [32]byte
		copy(hash[:], key)
		var blob coordinatorMessageBlob
		if err := decodeCBOR(value, &blob); err != nil {
			return err
		}
		out[hash] = &CoordinatorMessage{
			State:           blob.State,
			Participants:    blob.Participants,
			IsSigner:        blob.IsSigner,
			Nonces:          blob.Nonces,
			SigningPackage:  blob.SigningPackage,
			Commitments:     blob.Commitments,
			SignatureShares: blob.SignatureShares,
		}
		return nil
	})
	if err != nil {
		return nil, newErr("list coordinator messages", KindCorrupt, err)
	}
	return out, nil
}

// SetParticipantMessage persists this party's signer-side bookkeeping
// record for messageHash.
func (s *Store) SetParticipantMessage(messageHash [32]byte, msg *ParticipantMessage) error {
	blob := &participantMessageBlob{
		Participants:   msg.Participants,
		Coordinator:    msg.Coordinator,
		Nonces:         msg.Nonces,
		Commitments:    msg.Commitments,
		SigningPackage: msg.SigningPackage,
		Round2Share:    msg.Round2Share,
	}
	raw, err := encodeCBOR(blob)
	if err != nil {
		return newErr("set participant message", KindCorrupt, err)
	}
	if err := s.kv.Put(KeyspaceParticipantMessages, messageHashKey(messageHash), raw); err != nil {
		return newErr("set participant message", KindIO, err)
	}
	return nil
}

// GetParticipantMessage returns this party's signer-side record for
// messageHash, if one exists.
func (s *Store) GetParticipantMessage(messageHash [32]byte) (*ParticipantMessage, bool, error) {
	raw, found, err := s.kv.Get(KeyspaceParticipantMessages, messageHashKey(messageHash))
	if err != nil {
		return nil, false, newErr("get participant message", KindIO, err)
	}
	if !found {
		return nil, false, nil
	}
	var blob participantMessageBlob
	if err := decodeCBOR(raw, &blob); err != nil {
		return nil, false, newErr("get participant message", KindCorrupt, err)
	}
	return &ParticipantMessage{
		Participants:   blob.Participants,
		Coordinator:    blob.Coordinator,
		Nonces:         blob.Nonces,
		Commitments:    blob.Commitments,
		SigningPackage: blob.SigningPackage,
		Round2Share:    blob.Round2Share,
	}, true, nil
}

// DeleteParticipantMessage removes this party's signer-side record for
// messageHash.
func (s *Store) DeleteParticipantMessage(messageHash [32]byte) error {
	if err := s.kv.Delete(KeyspaceParticipantMessages, messageHashKey(messageHash)); err != nil {
		return newErr("delete participant message", KindIO, err)
	}
	return nil
}

// ListParticipantMessages returns every in-flight signer-side record,
// keyed by message hash.
func (s *Store) ListParticipantMessages() (map[[32]byte]*ParticipantMessage, error) {
	out := make(map[[32]byte]*ParticipantMessage)
	err := s.kv.Iterate(KeyspaceParticipantMessages, func(key, value []byte) error {
		var hash [32]byte
		copy(hash[:], key)
		var blob participantMessageBlob
		if err := decodeCBOR(value, &blob); err != nil {
			return err
		}
		out[hash] = &ParticipantMessage{
			Participants:   blob.Participants,
			Coordinator:    blob.Coordinator,
			Nonces:         blob.Nonces,
			Commitments:    blob.Commitments,
			SigningPackage: blob.SigningPackage,
			Round2Share:    blob.Round2Share,
		}
		return nil
	})
	if err != nil {
		return nil, newErr("list participant messages", KindCorrupt, err)
	}
	return out, nil
}

// SetSignedMessage persists the terminal artifact of a completed signing
// operation.
func (s *Store) SetSignedMessage(messageHash [32]byte, msg *SignedMessage) error {
	blob := &signedMessageBlob{
		Participants:  msg.Participants,
		MessageHash:   messageHash[:],
		Signature:     msg.Signature,
		PublicPackage: msg.PublicPackage,
	}
	raw, err := encodeCBOR(blob)
	if err != nil {
		return newErr("set signed message", KindCorrupt, err)
	}
	if err := s.kv.Put(KeyspaceSignedMessages, messageHashKey(messageHash), raw); err != nil {
		return newErr("set signed message", KindIO, err)
	}
	return nil
}

// GetSignedMessage returns the signed artifact for messageHash, if one
// exists.
func (s *Store) GetSignedMessage(messageHash [32]byte) (*SignedMessage, bool, error) {
	raw, found, err := s.kv.Get(KeyspaceSignedMessages, messageHashKey(messageHash))
	if err != nil {
		return nil, false, newErr("get signed message", KindIO, err)
	}
	if !found {
		return nil, false, nil
	}
	var blob signedMessageBlob
	if err := decodeCBOR(raw, &blob); err != nil {
		return nil, false, newErr("get signed message", KindCorrupt, err)
	}
	var hash [32]byte
	copy(hash[:], blob.MessageHash)
	return &SignedMessage{
		Participants:  blob.Participants,
		MessageHash:   hash,
		Signature:     blob.Signature,
		PublicPackage: blob.PublicPackage,
	}, true, nil
}

// DeleteSignedMessage removes the signed artifact for messageHash. The
// signing engine's VerifyAndRemove removes the participant record, not
// this one.
func (s *Store) DeleteSignedMessage(messageHash [32]byte) error {
	if err := s.kv.Delete(KeyspaceSignedMessages, messageHashKey(messageHash)); err != nil {
		return newErr("delete signed message", KindIO, err)
	}
	return nil
}
