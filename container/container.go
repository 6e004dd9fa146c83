package container

import (
	"fmt"
	"iter"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/relgraph"
	"github.com/hupe1980/relgraph/tokenset"
)

// Attribute names of the container index.
const (
	SourceAttr = "source"
	TargetAttr = "target"
)

// Container holds relationship records under generated keys and indexes
// them by source and target.
type Container struct {
	mu    sync.RWMutex
	ix    *relgraph.Index
	objs  *relgraph.Registry
	rels  *relgraph.Registry
	byKey map[string]Record
	keys  map[Record]string

	batchLimit int
	logger     *relgraph.Logger
}

// New creates an empty container.
func New(optFns ...Option) (*Container, error) {
	o := options{
		batchLimit: DefaultBatchLimit,
		logger:     relgraph.NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	c := &Container{
		objs:       relgraph.NewRegistry(),
		rels:       relgraph.NewRegistry(),
		byKey:      make(map[string]Record),
		keys:       make(map[Record]string),
		batchLimit: o.batchLimit,
		logger:     o.logger,
	}

	attrs := []relgraph.AttributeSpec{
		{
			Name:     SourceAttr,
			Extract:  func(r any) ([]any, error) { return r.(Record).Sources(), nil },
			Multiple: true,
			Family:   tokenset.Int32,
			Dump:     c.objs.Dump,
			Load:     c.objs.Load,
		},
		{
			Name:     TargetAttr,
			Extract:  func(r any) ([]any, error) { return r.(Record).Targets(), nil },
			Multiple: true,
			Family:   tokenset.Int32,
			Dump:     c.objs.Dump,
			Load:     c.objs.Load,
		},
	}

	indexOpts := []relgraph.Option{relgraph.WithLogger(o.logger)}
	indexOpts = append(indexOpts, o.indexOpts...)
	indexOpts = append(indexOpts,
		relgraph.WithRelationFamily(tokenset.Int32),
		relgraph.WithRelationResolver(c.rels.Dump, c.rels.Load),
		relgraph.WithDefaultExpander(relgraph.NewTransposing(SourceAttr, TargetAttr)),
	)

	ix, err := relgraph.New(attrs, indexOpts...)
	if err != nil {
		return nil, err
	}
	c.ix = ix
	return c, nil
}

// Add stores r under a new key and indexes it.
func (c *Container) Add(r Record) (string, error) {
	if err := checkRecord(r); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.keys[r]; ok {
		return "", ErrAlreadyStored
	}
	if err := c.ix.Index(r); err != nil {
		c.rels.Unregister(r)
		c.release(r.Sources(), r.Targets())
		return "", err
	}

	key := c.newKey()
	c.byKey[key] = r
	c.keys[r] = key
	if o, ok := r.(owned); ok {
		o.setOwner(c)
	}

	c.logger.Debug("relationship added", "key", key)
	return key, nil
}

func checkRecord(r Record) error {
	if r == nil || !reflect.TypeOf(r).Comparable() {
		return fmt.Errorf("%w: record %T", relgraph.ErrNotComparable, r)
	}
	return nil
}

// newKey returns an unused key. Caller must hold the write lock.
func (c *Container) newKey() string {
	for {
		key := uuid.NewString()
		if _, ok := c.byKey[key]; !ok {
			return key
		}
	}
}

// Remove unindexes r and drops it from the container.
func (c *Container) Remove(r Record) error {
	if err := checkRecord(r); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key, ok := c.keys[r]
	if !ok {
		return ErrNotStored
	}
	if err := c.ix.Unindex(r); err != nil {
		return err
	}

	delete(c.byKey, key)
	delete(c.keys, r)
	c.rels.Unregister(r)
	c.release(r.Sources(), r.Targets())
	if o, ok := r.(owned); ok {
		o.setOwner(nil)
	}

	c.logger.Debug("relationship removed", "key", key)
	return nil
}

// Reindex updates the index after the ends of a stored record changed.
// Records created by this package reindex themselves. On failure the index
// keeps the previous ends.
func (c *Container) Reindex(r Record) error {
	if err := checkRecord(r); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.keys[r]; !ok {
		return ErrNotStored
	}
	if err := c.reindex(r, c.indexedObjects(r)); err != nil {
		c.release(r.Sources(), r.Targets())
		return err
	}
	return nil
}

// update applies mutate to a stored record and reindexes it. On failure it
// calls undo and releases objects registered by the failed attempt.
func (c *Container) update(r Record, mutate, undo func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.keys[r]; !ok {
		mutate()
		return nil
	}
	old := c.indexedObjects(r)
	mutate()
	if err := c.reindex(r, old); err != nil {
		attempted := append(r.Sources(), r.Targets()...)
		undo()
		c.release(attempted)
		return err
	}
	return nil
}

func (c *Container) reindex(r Record, old []any) error {
	if err := c.ix.Index(r); err != nil {
		return fmt.Errorf("reindex %s: %w", c.keys[r], err)
	}
	c.release(old)
	return nil
}

// indexedObjects returns the objects r is currently indexed with.
func (c *Container) indexedObjects(r Record) []any {
	tok, ok := c.rels.Token(r)
	if !ok {
		return nil
	}
	var out []any
	for _, name := range []string{SourceAttr, TargetAttr} {
		set, err := c.ix.FindValueTokenSet(tok, name)
		if err != nil {
			continue
		}
		for t := range set.All() {
			if obj, ok := c.objs.Object(t.(uint32)); ok {
				out = append(out, obj)
			}
		}
	}
	return out
}

// release unregisters objects no longer referenced by any relationship.
// Caller must hold the write lock.
func (c *Container) release(groups ...[]any) {
	for _, objs := range groups {
		for _, obj := range objs {
			tok, ok := c.objs.Token(obj)
			if !ok || c.inUse(tok) {
				continue
			}
			c.objs.Unregister(obj)
		}
	}
}

func (c *Container) inUse(tok uint32) bool {
	for _, name := range []string{SourceAttr, TargetAttr} {
		if n, _ := c.ix.ValueCount(name, tok); n > 0 {
			return true
		}
	}
	return false
}

// Get returns the record stored under key.
func (c *Container) Get(key string) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byKey[key]
	return r, ok
}

// Key returns the key of a stored record.
func (c *Container) Key(r Record) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key, ok := c.keys[r]
	return key, ok
}

// Len returns the number of stored records.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}

// All iterates a snapshot of the stored records ordered by key.
func (c *Container) All() iter.Seq2[string, Record] {
	c.mu.RLock()
	snapshot := maps.Clone(c.byKey)
	c.mu.RUnlock()

	return func(yield func(string, Record) bool) {
		for _, key := range slices.Sorted(maps.Keys(snapshot)) {
			if !yield(key, snapshot[key]) {
				return
			}
		}
	}
}

// Stats returns statistics about the underlying index.
func (c *Container) Stats() relgraph.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ix.GetStats()
}
