package events

import "time"

// Envelope is the event shape relayed from the claim outbox to the bus.
// Wallet and transaction IDs ride along so consumers can key off them
// without decoding the payload.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	WalletID       string    `json:"wallet_id"`
	TxID           string    `json:"tx_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

// Event types emitted by claim verification.
const (
	TypeWalletRegistered = "airdrop.wallet.registered"
	TypeTradeInAccepted  = "airdrop.tradein.accepted"
)
