package store

import "threshold.network/frost/ciphersuite"

func (s *Store) readDkgBlob() (*dkgBlob, error) {
	raw, found, err := s.kv.Get(KeyspaceDKG, singletonKey)
	if err != nil {
		return nil, newErr("read dkg", KindIO, err)
	}
	if !found {
		return &dkgBlob{State: DkgInitial}, nil
	}
	var blob dkgBlob
	if err := decodeCBOR(raw, &blob); err != nil {
		return nil, newErr("read dkg", KindCorrupt, err)
	}
	return &blob, nil
}

func (s *Store) writeDkgBlob(blob *dkgBlob) error {
	raw, err := encodeCBOR(blob)
	if err != nil {
		return newErr("write dkg", KindCorrupt, err)
	}
	if err := s.kv.Put(KeyspaceDKG, singletonKey, raw); err != nil {
		return newErr("write dkg", KindIO, err)
	}
	return nil
}

// GetDkgState returns the DKG working set's current phase.
func (s *Store) GetDkgState() (DkgState, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return DkgInitial, err
	}
	return blob.State, nil
}

// SetDkgState records a new DKG phase. The engine is responsible for
// validating the transition; the store only persists it.
func (s *Store) SetDkgState(state DkgState) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.State = state
	return s.writeDkgBlob(blob)
}

// GetIdentifier returns this party's identifier, if one has been set.
func (s *Store) GetIdentifier() (ciphersuite.Identifier, bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return ciphersuite.Identifier{}, false, err
	}
	if !blob.HasIdentifier {
		return ciphersuite.Identifier{}, false, nil
	}
	id, err := ciphersuite.DecodeIdentifier(blob.Identifier)
	if err != nil {
		return ciphersuite.Identifier{}, false, newErr("get identifier", KindCorrupt, err)
	}
	return id, true, nil
}

// SetIdentifier records this party's identifier for the DKG run.
func (s *Store) SetIdentifier(id ciphersuite.Identifier) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.Identifier = id.Bytes()
	blob.HasIdentifier = true
	return s.writeDkgBlob(blob)
}

// GetMaxSigners returns the configured group size n, if set.
func (s *Store) GetMaxSigners() (uint16, bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return 0, false, err
	}
	return blob.MaxSigners, blob.MaxSigners != 0, nil
}

// SetMaxSigners records the configured group size n.
func (s *Store) SetMaxSigners(n uint16) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.MaxSigners = n
	return s.writeDkgBlob(blob)
}

// GetMinSigners returns the configured threshold t, if set.
func (s *Store) GetMinSigners() (uint16, bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return 0, false, err
	}
	return blob.MinSigners, blob.MinSigners != 0, nil
}

// SetMinSigners records the configured threshold t.
func (s *Store) SetMinSigners(t uint16) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.MinSigners = t
	return s.writeDkgBlob(blob)
}

// SetPart1Package persists this party's round-1 secret and public package,
// per spec.md section 4.D's Part1 postcondition.
func (s *Store) SetPart1Package(secret *ciphersuite.Round1Secret, public *ciphersuite.Round1Public) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.Part1Secret = secret.Encode()
	blob.Part1Public = public.Encode()
	return s.writeDkgBlob(blob)
}

// GetPart1Secret consumes and returns the round-1 secret; a second call
// returns a not-found error, per spec.md section 9's consume-on-read note.
func (s *Store) GetPart1Secret() (*ciphersuite.Round1Secret, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, err
	}
	if len(blob.Part1Secret) == 0 {
		return nil, newErr("get part1 secret", KindNotFound, nil)
	}
	secret, err := ciphersuite.DecodeRound1Secret(blob.Part1Secret)
	if err != nil {
		return nil, newErr("get part1 secret", KindCorrupt, err)
	}
	blob.Part1Secret = nil
	if err := s.writeDkgBlob(blob); err != nil {
		return nil, err
	}
	return secret, nil
}

// GetPart1Public returns this party's own round-1 public package.
func (s *Store) GetPart1Public() (*ciphersuite.Round1Public, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, err
	}
	if len(blob.Part1Public) == 0 {
		return nil, newErr("get part1 public", KindNotFound, nil)
	}
	public, err := ciphersuite.DecodeRound1Public(blob.Part1Public)
	if err != nil {
		return nil, newErr("get part1 public", KindCorrupt, err)
	}
	return public, nil
}

// AddReceivedPart1 records a peer's round-1 broadcast package.
func (s *Store) AddReceivedPart1(sender ciphersuite.Identifier, pkg *ciphersuite.Round1Public) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	if blob.ReceivedPart1 == nil {
		blob.ReceivedPart1 = make(map[string][]byte)
	}
	blob.ReceivedPart1[string(sender.Bytes())] = pkg.Encode()
	return s.writeDkgBlob(blob)
}

// HasReceivedPart1 reports whether a round-1 package has been recorded for
// sender.
func (s *Store) HasReceivedPart1(sender ciphersuite.Identifier) (bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return false, err
	}
	_, ok := blob.ReceivedPart1[string(sender.Bytes())]
	return ok, nil
}

// GetReceivedPart1 returns the previously recorded round-1 package for
// sender, if any.
func (s *Store) GetReceivedPart1(sender ciphersuite.Identifier) (*ciphersuite.Round1Public, bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, false, err
	}
	raw, ok := blob.ReceivedPart1[string(sender.Bytes())]
	if !ok {
		return nil, false, nil
	}
	pkg, err := ciphersuite.DecodeRound1Public(raw)
	if err != nil {
		return nil, false, newErr("get received part1", KindCorrupt, err)
	}
	return pkg, true, nil
}

// GetAllReceivedPart1 returns every recorded round-1 package, keyed by
// sender.
func (s *Store) GetAllReceivedPart1() (map[ciphersuite.Identifier]*ciphersuite.Round1Public, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, err
	}
	out := make(map[ciphersuite.Identifier]*ciphersuite.Round1Public, len(blob.ReceivedPart1))
	for key, raw := range blob.ReceivedPart1 {
		id, err := ciphersuite.DecodeIdentifier([]byte(key))
		if err != nil {
			return nil, newErr("get all received part1", KindCorrupt, err)
		}
		pkg, err := ciphersuite.DecodeRound1Public(raw)
		if err != nil {
			return nil, newErr("get all received part1", KindCorrupt, err)
		}
		out[id] = pkg
	}
	return out, nil
}

// CountReceivedPart1 returns how many round-1 packages have been recorded.
func (s *Store) CountReceivedPart1() (int, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return 0, err
	}
	return len(blob.ReceivedPart1), nil
}

// SetPart2Package persists this party's round-2 secret share and the map
// of outgoing per-recipient shares, per spec.md section 4.D's Part2
// postcondition.
func (s *Store) SetPart2Package(secret *ciphersuite.Round2Secret, outgoing map[ciphersuite.Identifier]*ciphersuite.Round2Public) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	blob.Part2Secret = secret.Encode()
	blob.Part2Outgoing = make(map[string][]byte, len(outgoing))
	for id, pkg := range outgoing {
		blob.Part2Outgoing[string(id.Bytes())] = pkg.Encode()
	}
	return s.writeDkgBlob(blob)
}

// GetPart2Secret consumes and returns the round-2 secret share; a second
// call returns a not-found error.
func (s *Store) GetPart2Secret() (*ciphersuite.Round2Secret, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, err
	}
	if len(blob.Part2Secret) == 0 {
		return nil, newErr("get part2 secret", KindNotFound, nil)
	}
	secret, err := ciphersuite.DecodeRound2Secret(blob.Part2Secret)
	if err != nil {
		return nil, newErr("get part2 secret", KindCorrupt, err)
	}
	blob.Part2Secret = nil
	if err := s.writeDkgBlob(blob); err != nil {
		return nil, err
	}
	return secret, nil
}

// GetPart2Package returns the outgoing round-2 share addressed to
// recipient.
func (s *Store) GetPart2Package(recipient ciphersuite.Identifier) (*ciphersuite.Round2Public, bool, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, false, err
	}
	raw, ok := blob.Part2Outgoing[string(recipient.Bytes())]
	if !ok {
		return nil, false, nil
	}
	pkg, err := ciphersuite.DecodeRound2Public(raw)
	if err != nil {
		return nil, false, newErr("get part2 package", KindCorrupt, err)
	}
	return pkg, true, nil
}

// AddReceivedPart2 records a peer's round-2 share addressed to this party.
func (s *Store) AddReceivedPart2(sender ciphersuite.Identifier, pkg *ciphersuite.Round2Public) error {
	blob, err := s.readDkgBlob()
	if err != nil {
		return err
	}
	if blob.ReceivedPart2 == nil {
		blob.ReceivedPart2 = make(map[string][]byte)
	}
	blob.ReceivedPart2[string(sender.Bytes())] = pkg.Encode()
	return s.writeDkgBlob(blob)
}

// GetAllReceivedPart2 returns every recorded round-2 share, keyed by
// sender.
func (s *Store) GetAllReceivedPart2() (map[ciphersuite.Identifier]*ciphersuite.Round2Public, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return nil, err
	}
	out := make(map[ciphersuite.Identifier]*ciphersuite.Round2Public, len(blob.ReceivedPart2))
	for key, raw := range blob.ReceivedPart2 {
		id, err := ciphersuite.DecodeIdentifier([]byte(key))
		if err != nil {
			return nil, newErr("get all received part2", KindCorrupt, err)
		}
		pkg, err := ciphersuite.DecodeRound2Public(raw)
		if err != nil {
			return nil, newErr("get all received part2", KindCorrupt, err)
		}
		out[id] = pkg
	}
	return out, nil
}

// CountReceivedPart2 returns how many round-2 shares have been recorded.
func (s *Store) CountReceivedPart2() (int, error) {
	blob, err := s.readDkgBlob()
	if err != nil {
		return 0, err
	}
	return len(blob.ReceivedPart2), nil
}

// ClearDkg wipes the DKG working set back to its Initial state, per
// spec.md section 4.C's clear_dkg, used once the keypair record has been
// derived and the working set is no longer needed.
func (s *Store) ClearDkg() error {
	if err := s.kv.Delete(KeyspaceDKG, singletonKey); err != nil {
		return newErr("clear dkg", KindIO, err)
	}
	return nil
}
