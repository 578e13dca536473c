// Package writeback persists values in the background so callers never wait
// on storage.
//
// Each key has at most one write in flight and at most one write waiting
// behind it. Enqueueing while a write is waiting replaces its value, so a
// burst of updates collapses into the in-flight write plus one final write of
// the newest value. Every Enqueue returns an Ack that resolves once the value
// it carried, or a newer one for the same key, has been stored or dropped.
//
// Failed writes are retried with exponential backoff a bounded number of
// times and then dropped; the error is logged and reported on the Ack.
package writeback
