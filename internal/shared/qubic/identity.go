// Package qubic holds the pure wire-format helpers shared across modules:
// identity normalization and decoding, asset-name encoding, and the fixed
// binary layout of QX transfer payloads. Everything here is side-effect free.
package qubic

import (
	"encoding/binary"
	"errors"
	"strings"
)

const (
	// IdentityLength is the full identity string length, checksum included.
	IdentityLength = 60
	// identityCoreLength is the part that encodes the 32-byte public key:
	// four groups of 14 base-26 digits. The trailing 4-char checksum is not
	// verified here; payload comparisons only need the key bytes.
	identityCoreLength = 56

	identityChunks     = 4
	identityChunkChars = 14

	// PublicKeyLength is the decoded key size in bytes.
	PublicKeyLength = 32
)

var (
	ErrInvalidIdentity  = errors.New("invalid qubic identity")
	ErrInvalidAssetName = errors.New("asset name must be 1..8 chars")
	ErrPayloadTooShort  = errors.New("payload too short")
)

// Identity is a normalized ledger account address: 60 uppercase A-Z letters.
type Identity string

// NormalizeIdentity trims and uppercases the raw value and validates the
// 60-upper-letter shape. Anything else is rejected, never coerced.
func NormalizeIdentity(raw string) (Identity, error) {
	val := strings.ToUpper(strings.TrimSpace(raw))
	if len(val) != IdentityLength {
		return "", ErrInvalidIdentity
	}
	for i := 0; i < len(val); i++ {
		if val[i] < 'A' || val[i] > 'Z' {
			return "", ErrInvalidIdentity
		}
	}
	return Identity(val), nil
}

// MustIdentity is for static, known-good addresses (tests, defaults).
// It panics on malformed input.
func MustIdentity(raw string) Identity {
	id, err := NormalizeIdentity(raw)
	if err != nil {
		panic("qubic: malformed identity literal: " + raw)
	}
	return id
}

func (id Identity) String() string { return string(id) }

// PublicKey decodes the identity into its 32-byte public key.
//
// The first 56 characters are four 14-digit base-26 groups. Within a group
// the first character is the least significant digit; each group value is
// written little-endian into 8 bytes of the key. The checksum characters are
// ignored.
func (id Identity) PublicKey() ([PublicKeyLength]byte, error) {
	var out [PublicKeyLength]byte

	norm, err := NormalizeIdentity(string(id))
	if err != nil {
		return out, err
	}
	core := string(norm)[:identityCoreLength]

	for chunk := 0; chunk < identityChunks; chunk++ {
		var n, mul uint64 = 0, 1
		for i := 0; i < identityChunkChars; i++ {
			digit := uint64(core[chunk*identityChunkChars+i] - 'A')
			// NormalizeIdentity already guarantees A..Z, so digit <= 25.
			n += digit * mul
			mul *= 26
		}
		binary.LittleEndian.PutUint64(out[chunk*8:], n)
	}
	return out, nil
}
