// Package engine is the contract provider: it owns a loaded set of
// version schemas, merges messages on demand, and memoizes the results.
//
// Each loaded schema set gets a generation id; cache keys are
// generation/message strings, so reloading schemas naturally invalidates
// everything without structural hashing. Merged results are immutable,
// so concurrent misses for the same message may both compute; the
// results are identical and either may win the cache slot.
package engine
