// Package textbuf models the flattened text of a document as the remote
// document service sees it.
//
// Offsets count UTF-16 code units, which is the unit the document service
// uses for its indices. A Buffer is immutable: applying an EditOp returns a
// new Buffer and leaves the receiver untouched.
//
// Key types:
//   - Buffer: the text, addressed by code-unit offsets in [0, Len()]
//   - Range: a half-open [Start, End) span
//   - EditOp: a primitive Insert or Delete, interpreted against the buffer
//     state produced by all prior ops in the same list
package textbuf
