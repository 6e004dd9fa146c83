// Package tokenset provides ordered token collections for the relation index.
//
// Every collection belongs to a Family which fixes the dynamic type of its
// tokens and the data structure used to store them:
//
//	Int32:  uint32 tokens   → 32-bit Roaring Bitmap
//	Int64:  uint64 tokens   → 64-bit Roaring Bitmap
//	Object: ordered scalars → sorted slice
//
// The family is chosen once per attribute (and once for relation tokens) and
// all set algebra dispatches on it. Sets of different families are never
// combined; doing so is a programming error and panics.
//
// Iteration is always in ascending token order, which keeps traversal output
// deterministic for a given index state.
package tokenset
