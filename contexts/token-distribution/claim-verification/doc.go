// Package claimverification checks registration and trade-in claims against
// the ledger and records accepted ones append-only.
//
// Both confirmation paths run the same ordered constraint chain: fund
// movement first, then source, destination and the claim-specific fields.
// The first failed constraint surfaces its own sentinel so a wallet knows
// exactly what to correct before resubmitting.
package claimverification
