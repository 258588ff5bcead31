// Package analyzer compiles per-version .proto sources and walks the
// resulting descriptors into immutable schema snapshots.
//
// Compilation is in-memory via bufbuild/protocompile; walking covers
// syntax dialect, labels, oneof membership (synthetic oneofs detected and
// flagged), map entry unwrapping, and enum value sets. The snapshots feed
// the merger; nothing downstream touches live descriptors again.
package analyzer
