// Package walletregistry owns wallet accounts and balance snapshots for the
// QDOGE airdrop.
//
// The module owns the users and res tables and exposes wallet summary reads,
// snapshot upserts with a monotonic resource version, and the admin snapshot
// import paths for the portal and power pools.
package walletregistry
