package tokenset

import (
	"iter"
	"slices"
)

// ordered implements Set for the Object family as a sorted slice.
// Membership is a binary search; insertion and removal shift the tail.
type ordered struct {
	items []any
}

func newOrdered(capacity int) *ordered {
	return &ordered{items: make([]any, 0, capacity)}
}

func (o *ordered) Family() Family { return Object }

func (o *ordered) Len() int { return len(o.items) }

func (o *ordered) IsEmpty() bool { return len(o.items) == 0 }

func (o *ordered) search(tok any) (int, bool) {
	return slices.BinarySearchFunc(o.items, tok, compareObjects)
}

func (o *ordered) Contains(tok any) bool {
	v, ok := normalizeObject(tok)
	if !ok {
		return false
	}
	_, found := o.search(v)
	return found
}

func (o *ordered) Add(tok any) {
	i, found := o.search(tok)
	if found {
		return
	}
	o.items = slices.Insert(o.items, i, tok)
}

func (o *ordered) Remove(tok any) {
	i, found := o.search(tok)
	if !found {
		return
	}
	o.items = slices.Delete(o.items, i, i+1)
}

func (o *ordered) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		for _, t := range o.items {
			if !yield(t) {
				return
			}
		}
	}
}

func (o *ordered) Clone() Set {
	return &ordered{items: slices.Clone(o.items)}
}

// and merges two sorted slices.
func (o *ordered) and(other *ordered) Set {
	out := newOrdered(min(len(o.items), len(other.items)))
	i, j := 0, 0
	for i < len(o.items) && j < len(other.items) {
		switch c := compareObjects(o.items[i], other.items[j]); {
		case c < 0:
			i++
		case c > 0:
			j++
		default:
			out.items = append(out.items, o.items[i])
			i++
			j++
		}
	}
	return out
}
