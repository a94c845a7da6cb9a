package qubic

import "encoding/binary"

// TradeInPayloadSize is the fixed size of a QX TransferShareOwnershipAndPossession
// input record. Longer payloads are allowed; the extra bytes are ignored.
const TradeInPayloadSize = 80

// TradeInPayload is the decoded fixed-layout QX transfer input:
//
//	[0:32]  issuer public key
//	[32:64] new owner public key
//	[64:72] asset name value, little-endian int64
//	[72:80] number of shares, little-endian int64
type TradeInPayload struct {
	IssuerPublicKey   [PublicKeyLength]byte
	NewOwnerPublicKey [PublicKeyLength]byte
	AssetValue        int64
	Shares            int64
}

// DecodeTradeInPayload slices the fixed byte ranges above. Offsets and
// signedness must match the on-chain layout exactly.
func DecodeTradeInPayload(raw []byte) (TradeInPayload, error) {
	if len(raw) < TradeInPayloadSize {
		return TradeInPayload{}, ErrPayloadTooShort
	}
	var p TradeInPayload
	copy(p.IssuerPublicKey[:], raw[0:32])
	copy(p.NewOwnerPublicKey[:], raw[32:64])
	p.AssetValue = int64(binary.LittleEndian.Uint64(raw[64:72]))
	p.Shares = int64(binary.LittleEndian.Uint64(raw[72:80]))
	return p, nil
}
