// Package contract computes per-field behavioral contracts and merges them
// across schema versions.
//
// A FieldContract is a pure function of one version's raw field properties:
// it fixes whether the unified API exposes a presence check, whether reads
// go through that check, whether reads are nullable, and what the unset
// default is. A MergedFieldContract combines the contracts of every version
// that declares the field into one unified contract plus a conflict
// classification from the closed ConflictType taxonomy.
//
// All values here are immutable once built. The merge is commutative and
// associative over the set of per-version contracts: processing versions in
// any order yields the same unified contract.
package contract
