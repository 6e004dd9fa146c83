package tokenset

import (
	"cmp"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidToken is returned when a token does not fit the family of the
// collection it is meant for.
var ErrInvalidToken = errors.New("tokenset: invalid token")

// Family selects the token type and storage of a Set.
type Family uint8

const (
	// Int32 stores uint32 tokens in a Roaring Bitmap.
	Int32 Family = iota
	// Int64 stores uint64 tokens in a 64-bit Roaring Bitmap.
	Int64
	// Object stores ordered scalar tokens (strings, integers, floats, bools)
	// in a sorted slice.
	Object
)

// String returns the name of the family.
func (f Family) String() string {
	switch f {
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f <= Object
}

// Normalize converts tok to the canonical dynamic type of the family.
//
// Integer families accept any Go integer type inside their range. The Object
// family widens integers to int64/uint64 and floats to float64 so that equal
// values are equal map keys.
func (f Family) Normalize(tok any) (any, error) {
	switch f {
	case Int32:
		v, ok := asUint(tok)
		if !ok || v > math.MaxUint32 {
			return nil, fmt.Errorf("%w: %T(%v) for family %s", ErrInvalidToken, tok, tok, f)
		}
		return uint32(v), nil
	case Int64:
		v, ok := asUint(tok)
		if !ok {
			return nil, fmt.Errorf("%w: %T(%v) for family %s", ErrInvalidToken, tok, tok, f)
		}
		return v, nil
	case Object:
		v, ok := normalizeObject(tok)
		if !ok {
			return nil, fmt.Errorf("%w: %T for family %s", ErrInvalidToken, tok, f)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unknown family %s", ErrInvalidToken, f)
	}
}

// MustNormalize is like Normalize but panics on error.
func (f Family) MustNormalize(tok any) any {
	v, err := f.Normalize(tok)
	if err != nil {
		panic(err)
	}
	return v
}

func asUint(tok any) (uint64, bool) {
	switch v := tok.(type) {
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case int:
		return uint64(v), v >= 0
	case int64:
		return uint64(v), v >= 0
	case int32:
		return uint64(v), v >= 0
	case int16:
		return uint64(v), v >= 0
	case int8:
		return uint64(v), v >= 0
	default:
		return 0, false
	}
}

func normalizeObject(tok any) (any, bool) {
	switch v := tok.(type) {
	case string, bool, int64, uint64:
		return v, true
	case float64:
		// NaN never equals itself, so it cannot key a posting.
		return v, !math.IsNaN(v)
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case float32:
		return float64(v), !math.IsNaN(float64(v))
	default:
		return nil, false
	}
}

// kindRank orders normalized object tokens of different kinds.
func kindRank(tok any) int {
	switch tok.(type) {
	case bool:
		return 0
	case int64:
		return 1
	case uint64:
		return 2
	case float64:
		return 3
	case string:
		return 4
	default:
		panic(fmt.Sprintf("tokenset: unnormalized object token %T", tok))
	}
}

// compareObjects orders normalized object tokens: first by kind, then by value.
func compareObjects(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch x := a.(type) {
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case int64:
		return cmp.Compare(x, b.(int64))
	case uint64:
		return cmp.Compare(x, b.(uint64))
	case float64:
		return cmp.Compare(x, b.(float64))
	default:
		return cmp.Compare(a.(string), b.(string))
	}
}
