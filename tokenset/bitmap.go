package tokenset

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// bitmap32 implements Set for the Int32 family.
// It wraps the official roaring implementation.
type bitmap32 struct {
	rb *roaring.Bitmap
}

func newBitmap32() *bitmap32 {
	return &bitmap32{rb: roaring.New()}
}

func (b *bitmap32) Family() Family { return Int32 }

func (b *bitmap32) Len() int { return int(b.rb.GetCardinality()) }

func (b *bitmap32) IsEmpty() bool { return b.rb.IsEmpty() }

func (b *bitmap32) Contains(tok any) bool {
	v, ok := tok.(uint32)
	return ok && b.rb.Contains(v)
}

func (b *bitmap32) Add(tok any) { b.rb.Add(tok.(uint32)) }

func (b *bitmap32) Remove(tok any) { b.rb.Remove(tok.(uint32)) }

func (b *bitmap32) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

func (b *bitmap32) Clone() Set { return &bitmap32{rb: b.rb.Clone()} }

func (b *bitmap32) and(o *bitmap32) Set { return &bitmap32{rb: roaring.And(b.rb, o.rb)} }

func (b *bitmap32) andNot(o *bitmap32) Set { return &bitmap32{rb: roaring.AndNot(b.rb, o.rb)} }

// bitmap64 implements Set for the Int64 family.
type bitmap64 struct {
	rb *roaring64.Bitmap
}

func newBitmap64() *bitmap64 {
	return &bitmap64{rb: roaring64.New()}
}

func (b *bitmap64) Family() Family { return Int64 }

func (b *bitmap64) Len() int { return int(b.rb.GetCardinality()) }

func (b *bitmap64) IsEmpty() bool { return b.rb.IsEmpty() }

func (b *bitmap64) Contains(tok any) bool {
	v, ok := tok.(uint64)
	return ok && b.rb.Contains(v)
}

func (b *bitmap64) Add(tok any) { b.rb.Add(tok.(uint64)) }

func (b *bitmap64) Remove(tok any) { b.rb.Remove(tok.(uint64)) }

func (b *bitmap64) All() iter.Seq[any] {
	return func(yield func(any) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

func (b *bitmap64) Clone() Set { return &bitmap64{rb: b.rb.Clone()} }

func (b *bitmap64) and(o *bitmap64) Set { return &bitmap64{rb: roaring64.And(b.rb, o.rb)} }

func (b *bitmap64) andNot(o *bitmap64) Set { return &bitmap64{rb: roaring64.AndNot(b.rb, o.rb)} }
