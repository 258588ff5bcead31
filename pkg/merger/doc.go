// Package merger unifies the schemas of multiple published versions into a
// single merged view.
//
// Fields are grouped into logical fields by field number across versions,
// honoring configured renames and exclusions. Each logical field is
// classified for type conflicts, its per-version contracts are merged, and
// a conflict handler is selected that fixes the unified representation and
// the per-version value converter. Oneof groups and enums are merged by
// union, with mismatches surfaced as warnings on the merged message.
//
// Incompatible shapes (clashing message types, int/float mixes, map key
// drift) abort the merge with a schema error; everything in the closed
// conflict taxonomy merges cleanly.
package merger
