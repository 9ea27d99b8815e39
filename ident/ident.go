// Package ident allocates identities for graph entities and drawables.
//
// Every graph gets its own Allocator. Ids are sequential within the allocator
// and the allocator carries a uuid scope so that two graphs living side by
// side never hand out colliding identities.
package ident

import (
	"github.com/google/uuid"
)

// ID identifies an entity within one allocator scope.
type ID int64

// Allocator hands out sequential ids scoped to a single graph lifetime.
type Allocator struct {
	scope uuid.UUID
	next  ID
}

// New creates an allocator with a fresh scope.
func New() *Allocator {
	return &Allocator{scope: uuid.New()}
}

// Next returns the next id in sequence, starting at 1.
func (a *Allocator) Next() ID {
	a.next++
	return a.next
}

// Scope returns the allocator's scope as a string.
func (a *Allocator) Scope() string {
	return a.scope.String()
}

// Issued reports how many ids have been handed out.
func (a *Allocator) Issued() int {
	return int(a.next)
}
