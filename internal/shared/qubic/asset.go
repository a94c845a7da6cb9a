package qubic

import (
	"encoding/binary"
	"strings"
)

const assetNameMaxLen = 8

// AssetNameValue encodes an asset name the way the ledger stores it in
// payloads: uppercased, zero-padded to 8 bytes, read as a little-endian
// signed 64-bit integer.
func AssetNameValue(name string) (int64, error) {
	val := strings.ToUpper(strings.TrimSpace(name))
	if val == "" || len(val) > assetNameMaxLen {
		return 0, ErrInvalidAssetName
	}
	var buf [assetNameMaxLen]byte
	copy(buf[:], val)
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

// AssetNameFromValue is the inverse of AssetNameValue with the zero padding
// stripped. Useful for logs and round-trip checks.
func AssetNameFromValue(value int64) string {
	var buf [assetNameMaxLen]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(value))
	end := len(buf)
	for end > 0 && buf[end-1] == 0 {
		end--
	}
	return string(buf[:end])
}
