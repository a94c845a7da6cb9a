// Package allocationengine turns balance snapshots into exact integer payouts
// for the community, portal and power pools, and caches the result keyed by
// the snapshot version and a settings signature.
package allocationengine
