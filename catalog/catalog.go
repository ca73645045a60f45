// Package catalog implements the process-wide mapping from identifier
// to relation descriptor or native function (spec.md §4.2). A Catalog
// is constructed once per process, populated by built-in function
// registration and by CREATE statements, and never torn down.
package catalog

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/streamql-io/streamql/value"
)

// RelationDescriptor describes a catalog relation. Its schema set is
// open: StreamRelation is the only variant today, but callers must not
// exhaustively switch on unexported internals, only on the interface
// methods, so a second driver can be added without rewriting the
// executor contract.
type RelationDescriptor interface {
	isRelationDescriptor()
}

// StreamRelation is a relation backed by an external stream-service
// stream, resolved to its ARNs at CREATE time.
type StreamRelation struct {
	StreamName  string
	StreamARN   string
	ConsumerARN string
}

func (StreamRelation) isRelationDescriptor() {}

// NativeFunction is a total, panic-free function from argument values
// to a result value.
type NativeFunction func(args []value.Value) value.Value

// Catalog is the process-wide mutable store. CREATE statements mutate
// it serially with respect to query execution (spec.md §5); the
// embedded mutex exists to guard against accidental concurrent CREATE
// dispatch, not to protect reads during a running query, since queries
// never mutate the catalog.
type Catalog struct {
	mu        sync.RWMutex
	relations map[string]RelationDescriptor
	functions map[string]NativeFunction
}

// New constructs an empty catalog with the built-in native functions
// pre-registered.
func New() *Catalog {
	c := &Catalog{
		relations: make(map[string]RelationDescriptor),
		functions: make(map[string]NativeFunction),
	}
	registerBuiltins(c)
	return c
}

// RegisterRelation inserts name -> descriptor, rejecting duplicates. It
// reports whether the insertion happened.
func (c *Catalog) RegisterRelation(name string, descriptor RelationDescriptor) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.relations[name]; exists {
		logrus.WithField("relation", name).Warn("catalog: relation already registered")
		return false
	}
	c.relations[name] = descriptor
	return true
}

// RegisterFunction inserts or overwrites name -> fn. Overwriting is
// permitted so startup registration of built-ins is idempotent.
func (c *Catalog) RegisterFunction(name string, fn NativeFunction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[name] = fn
}

// LookupRelation returns the descriptor for name and whether it exists.
func (c *Catalog) LookupRelation(name string) (RelationDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.relations[name]
	return d, ok
}

// LookupFunction returns the function for name and whether it exists.
func (c *Catalog) LookupFunction(name string) (NativeFunction, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.functions[name]
	return fn, ok
}
