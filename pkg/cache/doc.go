/*
Package cache holds the Resource Cache: an addressable, ordered collection of
domain objects keyed by name.

Two layers are provided:

  - OrderedMap: a mutable map keyed by identity with a parallel insertion-order
    index. Upserts replace in place; misses append. It is not safe for
    concurrent use and is owned by exactly one writer (the reconciler).
  - Cache: the shared, read-mostly view. The writer publishes immutable
    Snapshots atomically, so readers never observe a partially applied change.
*/
package cache
