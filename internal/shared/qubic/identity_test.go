package qubic

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeCore builds the 56-char identity core for a known key so the decoder
// can be checked against an independently constructed encoding. The 4-char
// checksum suffix is arbitrary because PublicKey ignores it.
func encodeCore(t *testing.T, key [32]byte) string {
	t.Helper()
	var sb strings.Builder
	for chunk := 0; chunk < 4; chunk++ {
		n := binary.LittleEndian.Uint64(key[chunk*8:])
		for i := 0; i < 14; i++ {
			sb.WriteByte(byte('A' + n%26))
			n /= 26
		}
	}
	return sb.String()
}

func TestNormalizeIdentity(t *testing.T) {
	raw := "  " + strings.ToLower(strings.Repeat("a", 60)) + " "
	id, err := NormalizeIdentity(raw)
	require.NoError(t, err)
	assert.Equal(t, Identity(strings.Repeat("A", 60)), id)
}

func TestNormalizeIdentityRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"too short":   strings.Repeat("A", 59),
		"too long":    strings.Repeat("A", 61),
		"digit":       strings.Repeat("A", 59) + "1",
		"punctuation": strings.Repeat("A", 59) + "-",
		"space":       strings.Repeat("A", 30) + " " + strings.Repeat("A", 29),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NormalizeIdentity(raw)
			assert.ErrorIs(t, err, ErrInvalidIdentity)
		})
	}
}

func TestPublicKeyMatchesEncoding(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i*7 + 3)
	}
	id, err := NormalizeIdentity(encodeCore(t, key) + "AAAA")
	require.NoError(t, err)

	decoded, err := id.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestPublicKeyAllAIsZero(t *testing.T) {
	id := MustIdentity(strings.Repeat("A", 60))
	decoded, err := id.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, [32]byte{}, decoded)
}

func TestPublicKeyIsStable(t *testing.T) {
	id := MustIdentity("BURNQCDXPUVMBGCTKXZMLRCQYUWBPZREUCDIPECZOAYKCQNGTIUSDXLDULQL")
	first, err := id.PublicKey()
	require.NoError(t, err)
	second, err := id.PublicKey()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotEqual(t, [32]byte{}, first)
}

func TestPublicKeyRejectsMalformed(t *testing.T) {
	_, err := Identity(strings.Repeat("a", 60)).PublicKey()
	assert.NoError(t, err, "lowercase is normalized, not rejected")

	_, err = Identity("short").PublicKey()
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}
