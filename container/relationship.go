package container

import (
	"fmt"
	"slices"
)

// Record is a relationship from source objects to target objects.
// Implementations must be pointer types.
type Record interface {
	Sources() []any
	Targets() []any
}

// owned is implemented by records that reindex themselves when changed.
type owned interface {
	setOwner(c *Container)
}

// base links a mutable record to the container holding it.
type base struct {
	owner *Container
}

func (b *base) setOwner(c *Container) {
	b.owner = c
}

// update applies mutate and reindexes r if it is stored. If reindexing
// fails, undo restores the previous ends.
func (b *base) update(r Record, mutate, undo func()) error {
	if b.owner == nil {
		mutate()
		return nil
	}
	return b.owner.update(r, mutate, undo)
}

// Immutable is a relationship whose ends never change.
type Immutable struct {
	sources []any
	targets []any
}

// NewImmutable creates an immutable relationship.
func NewImmutable(sources, targets []any) *Immutable {
	return &Immutable{sources: slices.Clone(sources), targets: slices.Clone(targets)}
}

// Sources implements Record.
func (r *Immutable) Sources() []any { return slices.Clone(r.sources) }

// Targets implements Record.
func (r *Immutable) Targets() []any { return slices.Clone(r.targets) }

func (r *Immutable) String() string {
	return fmt.Sprintf("relationship from %v to %v", r.sources, r.targets)
}

// Relationship is a many-to-many relationship. Setting an end of a stored
// relationship reindexes it; a setter that fails leaves the ends unchanged.
type Relationship struct {
	base
	sources []any
	targets []any
}

// NewRelationship creates a relationship from sources to targets.
func NewRelationship(sources, targets []any) *Relationship {
	return &Relationship{sources: slices.Clone(sources), targets: slices.Clone(targets)}
}

// Sources implements Record.
func (r *Relationship) Sources() []any { return slices.Clone(r.sources) }

// Targets implements Record.
func (r *Relationship) Targets() []any { return slices.Clone(r.targets) }

// SetSources replaces the sources.
func (r *Relationship) SetSources(sources ...any) error {
	old := r.sources
	return r.update(r, func() { r.sources = slices.Clone(sources) }, func() { r.sources = old })
}

// SetTargets replaces the targets.
func (r *Relationship) SetTargets(targets ...any) error {
	old := r.targets
	return r.update(r, func() { r.targets = slices.Clone(targets) }, func() { r.targets = old })
}

func (r *Relationship) String() string {
	return fmt.Sprintf("relationship from %v to %v", r.sources, r.targets)
}

// OneToOne links a single source to a single target.
type OneToOne struct {
	base
	source any
	target any
}

// NewOneToOne creates a one-to-one relationship.
func NewOneToOne(source, target any) *OneToOne {
	return &OneToOne{source: source, target: target}
}

// Source returns the source.
func (r *OneToOne) Source() any { return r.source }

// Target returns the target.
func (r *OneToOne) Target() any { return r.target }

// Sources implements Record.
func (r *OneToOne) Sources() []any { return []any{r.source} }

// Targets implements Record.
func (r *OneToOne) Targets() []any { return []any{r.target} }

// SetSource replaces the source.
func (r *OneToOne) SetSource(source any) error {
	old := r.source
	return r.update(r, func() { r.source = source }, func() { r.source = old })
}

// SetTarget replaces the target.
func (r *OneToOne) SetTarget(target any) error {
	old := r.target
	return r.update(r, func() { r.target = target }, func() { r.target = old })
}

func (r *OneToOne) String() string {
	return fmt.Sprintf("relationship from %v to %v", r.source, r.target)
}

// OneToMany links a single source to several targets.
type OneToMany struct {
	base
	source  any
	targets []any
}

// NewOneToMany creates a one-to-many relationship.
func NewOneToMany(source any, targets []any) *OneToMany {
	return &OneToMany{source: source, targets: slices.Clone(targets)}
}

// Source returns the source.
func (r *OneToMany) Source() any { return r.source }

// Sources implements Record.
func (r *OneToMany) Sources() []any { return []any{r.source} }

// Targets implements Record.
func (r *OneToMany) Targets() []any { return slices.Clone(r.targets) }

// SetSource replaces the source.
func (r *OneToMany) SetSource(source any) error {
	old := r.source
	return r.update(r, func() { r.source = source }, func() { r.source = old })
}

// SetTargets replaces the targets.
func (r *OneToMany) SetTargets(targets ...any) error {
	old := r.targets
	return r.update(r, func() { r.targets = slices.Clone(targets) }, func() { r.targets = old })
}

// ManyToOne links several sources to a single target.
type ManyToOne struct {
	base
	sources []any
	target  any
}

// NewManyToOne creates a many-to-one relationship.
func NewManyToOne(sources []any, target any) *ManyToOne {
	return &ManyToOne{sources: slices.Clone(sources), target: target}
}

// Target returns the target.
func (r *ManyToOne) Target() any { return r.target }

// Sources implements Record.
func (r *ManyToOne) Sources() []any { return slices.Clone(r.sources) }

// Targets implements Record.
func (r *ManyToOne) Targets() []any { return []any{r.target} }

// SetSources replaces the sources.
func (r *ManyToOne) SetSources(sources ...any) error {
	old := r.sources
	return r.update(r, func() { r.sources = slices.Clone(sources) }, func() { r.sources = old })
}

// SetTarget replaces the target.
func (r *ManyToOne) SetTarget(target any) error {
	old := r.target
	return r.update(r, func() { r.target = target }, func() { r.target = old })
}
