// Package schema defines the immutable descriptor model consumed by the
// contract engine.
//
// A VersionSchema is a read-only snapshot of one published revision of a
// protobuf schema set: its messages, enums, and per-field raw properties
// (type kind, cardinality, label, oneof membership, syntax dialect). Field
// snapshots are produced once per parse and never mutated, which makes every
// artifact derived from them safely cacheable.
package schema
