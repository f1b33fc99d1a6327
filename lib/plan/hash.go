// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package plan

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest of plan bytes.
type Hash [32]byte

// planDomainKey is the 32-byte key for BLAKE3 keyed hashing. Domain
// separation keeps plan digests from colliding with hashes of the same
// bytes computed elsewhere. The byte values are the ASCII encoding of
// the domain name, zero-padded to 32 bytes, so the key is inspectable
// in hex dumps without sacrificing any cryptographic property.
var planDomainKey = [32]byte{
	's', 't', 'a', 'c', 'k', 'h', 'a', 'n', 'd', '.', 'p', 'l', 'a', 'n',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashPlan computes the plan-domain BLAKE3 keyed hash of data. This is
// the digest used as the plan's identity in the store and in PR
// comments.
func HashPlan(data []byte) Hash {
	// NewKeyed requires exactly 32 bytes, which the fixed-size key
	// guarantees. The error is only returned for wrong key length, so
	// this cannot fail.
	hasher, err := blake3.NewKeyed(planDomainKey[:])
	if err != nil {
		panic("plan: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)

	var digest Hash
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the hex encoding of the digest.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, enough to identify a
// plan in log output and comments.
func (h Hash) Short() string {
	return h.String()[:12]
}

// ParseHash parses a full-length hex digest.
func ParseHash(s string) (Hash, error) {
	var digest Hash
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return digest, fmt.Errorf("plan: invalid digest %q: %w", s, err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("plan: digest %q: got %d bytes, want %d", s, len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
