// Package shop owns the session's shopping state: the cart, the wishlist and
// the recently viewed products.
//
// A Manager is the single writer of those collections. Every cart or wishlist
// mutation is applied in memory first and then handed to a writeback.Writer,
// so callers never wait for storage and the in-memory state stays
// authoritative when a write fails. Recently viewed products live only for
// the session.
//
// Initialize hydrates the cart and wishlist from storage once per session.
// Mutations made before hydration completes are kept in memory and merged
// into the stored collections when they arrive; nothing is written for a key
// until then, so a stored collection is never overwritten before it was read.
package shop
