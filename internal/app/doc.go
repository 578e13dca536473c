// Package app is the composition root of the storefront.
//
// Open resolves the configuration, picks a key-value store for the configured
// driver, and builds the shopping state manager on top of a shared write-back
// queue. It also builds the catalog client and the account service. The
// manager is hydrated before Open returns, so callers can read the cart right
// away.
//
// Storage drivers:
//
//   - file: one JSON file per key under the data directory
//   - postgres: rows in kv_entries, namespaced by the device id
//   - memory: nothing survives the process
//
// Close flushes queued writes before releasing the store.
package app
