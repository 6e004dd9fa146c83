package relgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateAttribute is returned when two attribute specs share a name.
	ErrDuplicateAttribute = errors.New("duplicate attribute name")

	// ErrDuplicateExtractor is returned when two attribute specs share an element.
	ErrDuplicateExtractor = errors.New("duplicate attribute element")

	// ErrInvalidAttribute is returned for an attribute spec that cannot be indexed.
	ErrInvalidAttribute = errors.New("invalid attribute spec")

	// ErrResolverPair is returned when only one of dump and load is configured.
	ErrResolverPair = errors.New("dump and load must be provided together")

	// ErrUnknownAttribute is returned when a query names an attribute the index does not track.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrInvalidMaxDepth is returned when maxDepth is not a positive integer.
	ErrInvalidMaxDepth = errors.New("maxDepth must be unset or a positive integer")

	// ErrNoExpander is returned when a search requests more than one hop but no
	// expander is available.
	ErrNoExpander = errors.New("maxDepth > 1 requires an expander")

	// ErrMalformedQuery is returned by Apply for a query of the wrong shape.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrUnsupportedFamily is returned by Apply when the result family is not an integer family.
	ErrUnsupportedFamily = errors.New("unsupported token family")

	// ErrMultipleValues is returned when a single-valued attribute extracts several values.
	ErrMultipleValues = errors.New("multiple values for single-valued attribute")

	// ErrNotFound is returned when a token cannot be resolved to an object.
	ErrNotFound = errors.New("not found")

	// ErrNotComparable is returned when a Registry is asked to register an
	// object that cannot be a map key or is not equal to itself.
	ErrNotComparable = errors.New("object is not comparable")
)

// AttributeError reports a failure while extracting or translating the values
// of one attribute.
//
// The original underlying error can be accessed via errors.Unwrap.
type AttributeError struct {
	Name  string
	Op    string
	cause error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute %q: %s: %v", e.Name, e.Op, e.cause)
}

func (e *AttributeError) Unwrap() error { return e.cause }

func attrError(name, op string, err error) error {
	if err == nil {
		return nil
	}
	return &AttributeError{Name: name, Op: op, cause: err}
}
