// Package clients holds the domain cache clients composed from the three
// stores: each owns a unique lowercase key prefix, implements cache-aside
// reads against its source of truth, and picks its TTL by data volatility -
// minutes for scraped content, hours for computed rankings, permanent with
// explicit invalidation for entity records.
//
// A store read failure always propagates: "cache unavailable" is not "empty",
// and the caller decides whether to hit the source of truth or surface it.
package clients
