package relgraph

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry assigns stable uint32 tokens to comparable objects and resolves
// them back. Its Dump and Load methods satisfy DumpFunc and LoadFunc, so a
// registry can serve as resolver for attributes and relations alike.
//
// Dump registers unknown objects lazily. Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	next    uint32
	tokens  map[any]uint32
	objects map[uint32]any
}

// NewRegistry creates an empty registry. Tokens start at 1.
func NewRegistry() *Registry {
	return &Registry{
		next:    1,
		tokens:  make(map[any]uint32),
		objects: make(map[uint32]any),
	}
}

// Register returns the token of obj, assigning a new one if needed.
// obj must be comparable and equal to itself; Dump checks both.
func (r *Registry) Register(obj any) uint32 {
	r.mu.RLock()
	tok, ok := r.tokens[obj]
	r.mu.RUnlock()
	if ok {
		return tok
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.tokens[obj]; ok {
		return tok
	}
	tok = r.next
	r.next++
	r.tokens[obj] = tok
	r.objects[tok] = obj
	return tok
}

// Token returns the token of a registered object.
func (r *Registry) Token(obj any) (uint32, bool) {
	if !hashable(obj) {
		return 0, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tok, ok := r.tokens[obj]
	return tok, ok
}

// Object returns the object registered under tok.
func (r *Registry) Object(tok uint32) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[tok]
	return obj, ok
}

// Unregister forgets obj. Its token is never reused.
func (r *Registry) Unregister(obj any) {
	if !hashable(obj) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if tok, ok := r.tokens[obj]; ok {
		delete(r.tokens, obj)
		delete(r.objects, tok)
	}
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}

// Dump implements DumpFunc by registering obj.
func (r *Registry) Dump(obj any, _ *Index, _ Cache) (any, error) {
	if !hashable(obj) {
		return nil, fmt.Errorf("%w: %T", ErrNotComparable, obj)
	}
	return r.Register(obj), nil
}

// Load implements LoadFunc.
func (r *Registry) Load(tok any, _ *Index, _ Cache) (any, error) {
	t, ok := tok.(uint32)
	if !ok {
		return nil, fmt.Errorf("%w: token %T(%v)", ErrNotFound, tok, tok)
	}
	obj, ok := r.Object(t)
	if !ok {
		return nil, fmt.Errorf("%w: token %d", ErrNotFound, t)
	}
	return obj, nil
}

// hashable reports whether obj can key a map and be found again. Values
// that are not equal to themselves, such as NaN, are rejected.
func hashable(obj any) (ok bool) {
	if obj == nil || !reflect.TypeOf(obj).Comparable() {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	v := reflect.ValueOf(obj)
	return v.Equal(v)
}
