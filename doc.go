// Package feedcache implements the ranked cache layer behind a social client:
// chronological feeds, engagement counters, membership sets, and time-bounded
// rankings, all layered over a networked score-ranked key-value store (Redis).
//
// Components:
//   - ScalarStore: single values and counters with optional expiry. Counters
//     are guarded: increment/decrement never materialize a key that was not
//     explicitly set.
//   - SetStore: unordered membership sets with order-aligned bulk checks.
//   - RankedStore: score-ordered collections with bounded eviction, pipelined
//     fan-out writes, and two pagination modes (score boundary and rank offset).
//   - clients: key-namespaced, TTL-policy-specific cache-aside wrappers
//     composed from the three stores.
//
// A collection is bounded exactly one way: trimmed to its highest-scoring 999
// members after each insert (hot, append-forever feeds), or expired wholesale
// via TTL (point-in-time snapshots). The two strategies are never combined on
// one collection.
//
// Keys:
//
//	<domain>:<primaryId>[:<subfield>][:<variant>]  - colon-delimited; one
//	                                                 lowercase prefix per client
//	<collectionKey>:computed                       - existence marker; an empty
//	                                                 collection carrying it is
//	                                                 authoritatively empty, not cold
package feedcache
