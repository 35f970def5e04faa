// Package document defines the snapshot a reader hands to the engine: the
// flattened body text, its annotations and its heading sections.
//
// A Document is a value obtained fresh for every call. Nothing here keeps a
// live reference to a remote document; annotation offsets are never stored
// in the snapshot because the document service only exposes the quoted
// anchor text of each annotation.
package document
