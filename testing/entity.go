package testing

import (
	"sync"

	"github.com/arloliu/stratum/types"
)

// Entity is an in-memory types.Entity for authority tests.
//
// Position is guarded by a mutex so a test can move an entity while strategy
// queries run on other goroutines.
type Entity struct {
	id    types.EntityID
	class types.Class

	mu  sync.RWMutex
	pos types.Vector
}

var _ types.Entity = (*Entity)(nil)

// NewEntity creates a test entity.
//
// Parameters:
//   - id: Entity identifier
//   - class: Entity class (pass untyped nil for a class-less entity)
//   - pos: Initial world position
//
// Returns:
//   - *Entity: New test entity
//
// Example:
//
//	archer := types.NewClass("/Game/Archer", character)
//	e := stratumtest.NewEntity(7, archer, types.Vector{X: 100})
func NewEntity(id types.EntityID, class types.Class, pos types.Vector) *Entity {
	return &Entity{id: id, class: class, pos: pos}
}

// ID returns the entity identifier.
func (e *Entity) ID() types.EntityID {
	return e.id
}

// Class returns the entity class.
func (e *Entity) Class() types.Class {
	return e.class
}

// Position returns the current position.
func (e *Entity) Position() types.Vector {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.pos
}

// MoveTo updates the entity position.
func (e *Entity) MoveTo(pos types.Vector) {
	e.mu.Lock()
	e.pos = pos
	e.mu.Unlock()
}
