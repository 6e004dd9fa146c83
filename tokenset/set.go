package tokenset

import (
	"fmt"
	"iter"
)

// Set is an ordered collection of normalized tokens of one Family.
//
// Sets are not safe for concurrent mutation. Add and Remove panic when given
// a token of the wrong dynamic type; use Family.Normalize first.
type Set interface {
	// Family returns the family of the set.
	Family() Family
	// Len returns the number of tokens in the set.
	Len() int
	// IsEmpty reports whether the set has no tokens.
	IsEmpty() bool
	// Contains reports whether tok is in the set. Tokens of the wrong type
	// are never contained.
	Contains(tok any) bool
	// Add inserts tok.
	Add(tok any)
	// Remove deletes tok if present.
	Remove(tok any)
	// All iterates the tokens in ascending order.
	All() iter.Seq[any]
	// Clone returns a deep copy.
	Clone() Set
}

// New creates a set of family f holding toks. Tokens must already be
// normalized.
func New(f Family, toks ...any) Set {
	var s Set
	switch f {
	case Int32:
		s = newBitmap32()
	case Int64:
		s = newBitmap64()
	case Object:
		s = newOrdered(len(toks))
	default:
		panic(fmt.Sprintf("tokenset: unknown family %s", f))
	}
	for _, t := range toks {
		s.Add(t)
	}
	return s
}

// FromSeq creates a set of family f from a sequence of normalized tokens.
func FromSeq(f Family, seq iter.Seq[any]) Set {
	s := New(f)
	for t := range seq {
		s.Add(t)
	}
	return s
}

// Slice returns the tokens of s in ascending order.
func Slice(s Set) []any {
	if s == nil {
		return nil
	}
	out := make([]any, 0, s.Len())
	for t := range s.All() {
		out = append(out, t)
	}
	return out
}

func mustSameFamily(a, b Set) {
	if a.Family() != b.Family() {
		panic(fmt.Sprintf("tokenset: family mismatch %s != %s", a.Family(), b.Family()))
	}
}

// Intersect returns a new set holding the tokens present in both a and b.
func Intersect(a, b Set) Set {
	mustSameFamily(a, b)
	switch x := a.(type) {
	case *bitmap32:
		return x.and(b.(*bitmap32))
	case *bitmap64:
		return x.and(b.(*bitmap64))
	case *ordered:
		return x.and(b.(*ordered))
	}
	return filterInto(a, b.Contains)
}

// Difference returns a new set holding the tokens of a that are not in b.
func Difference(a, b Set) Set {
	mustSameFamily(a, b)
	switch x := a.(type) {
	case *bitmap32:
		return x.andNot(b.(*bitmap32))
	case *bitmap64:
		return x.andNot(b.(*bitmap64))
	}
	return filterInto(a, func(t any) bool { return !b.Contains(t) })
}

// Union returns a new set holding the tokens of all given sets. At least one
// set is required to fix the family.
func Union(f Family, sets ...Set) Set {
	out := New(f)
	for _, s := range sets {
		if s == nil {
			continue
		}
		mustSameFamily(out, s)
		switch x := out.(type) {
		case *bitmap32:
			x.rb.Or(s.(*bitmap32).rb)
		case *bitmap64:
			x.rb.Or(s.(*bitmap64).rb)
		default:
			for t := range s.All() {
				out.Add(t)
			}
		}
	}
	return out
}

// Filter returns a new set with the tokens of s for which keep returns true.
func Filter(s Set, keep func(any) bool) Set {
	return filterInto(s, keep)
}

func filterInto(s Set, keep func(any) bool) Set {
	out := New(s.Family())
	for t := range s.All() {
		if keep(t) {
			out.Add(t)
		}
	}
	return out
}

// Intersects reports whether a and b share at least one token.
func Intersects(a, b Set) bool {
	mustSameFamily(a, b)
	switch x := a.(type) {
	case *bitmap32:
		return x.rb.Intersects(b.(*bitmap32).rb)
	case *bitmap64:
		return x.rb.Intersects(b.(*bitmap64).rb)
	}
	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}
	for t := range small.All() {
		if large.Contains(t) {
			return true
		}
	}
	return false
}

// Equal reports whether a and b hold the same tokens. Two nil sets are equal;
// a nil set equals no non-nil set.
func Equal(a, b Set) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Family() != b.Family() || a.Len() != b.Len() {
		return false
	}
	switch x := a.(type) {
	case *bitmap32:
		return x.rb.Equals(b.(*bitmap32).rb)
	case *bitmap64:
		return x.rb.Equals(b.(*bitmap64).rb)
	}
	for t := range a.All() {
		if !b.Contains(t) {
			return false
		}
	}
	return true
}
