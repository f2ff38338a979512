/*
Package reconcile merges a long-lived stream of change events into a cache.

A Watcher is seeded with a freshly fetched collection, then applies every
ADDED, MODIFIED and DELETED event it receives, in arrival order, publishing a
new snapshot after each one. Upserts replace an entry at its current position
and append on a miss; deletes keep the relative order of the remaining
entries.

Cancellation is exactly-once. Once Cancel returns, no event is applied to the
cache, including an event that was already received but not yet applied. A
stream that fails or closes stops the watcher quietly and the last published
snapshot stays authoritative.
*/
package reconcile
