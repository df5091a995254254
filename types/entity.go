package types

import (
	"fmt"
	"sort"
)

// EntityID uniquely identifies a simulated entity across the fleet.
type EntityID uint64

// Class is the opaque, classifiable identity of a simulated entity.
//
// Only two things are consumed: a stable Path used as the identity key, and the
// Parent link used to walk the inheritance chain (most-derived first). Parent
// returns nil at the root of the chain.
type Class interface {
	// Path returns the stable identity of the class (e.g. "/Game/Pawns/Archer").
	Path() string

	// Parent returns the direct ancestor, or nil at the root.
	Parent() Class
}

// Entity is a simulated object whose authority is being decided.
type Entity interface {
	// ID returns the fleet-wide entity identifier.
	ID() EntityID

	// Class returns the entity's class identity. May be nil for malformed entities.
	Class() Class

	// Position returns the entity's current world position.
	Position() Vector
}

// StaticClass is a Class backed by a fixed path and parent pointer.
type StaticClass struct {
	path   string
	parent *StaticClass
}

var _ Class = (*StaticClass)(nil)

// NewClass creates a class with the given path and parent (nil for a root class).
//
// Parameters:
//   - path: Stable class path
//   - parent: Parent class, or nil
//
// Returns:
//   - *StaticClass: New class node
func NewClass(path string, parent *StaticClass) *StaticClass {
	return &StaticClass{path: path, parent: parent}
}

// Path returns the class path.
func (c *StaticClass) Path() string {
	return c.path
}

// Parent returns the parent class, or nil.
func (c *StaticClass) Parent() Class {
	if c.parent == nil {
		return nil
	}

	return c.parent
}

// String returns the class path.
func (c *StaticClass) String() string {
	return c.path
}

// ClassTable is a static class hierarchy built from a child → parent path map.
//
// It lets tooling and tests classify classes without a live object model.
type ClassTable struct {
	classes map[string]*StaticClass
}

// NewClassTable builds a hierarchy from child → parent paths.
//
// A class whose parent is "" (or absent from the map) is a root. Parents that only
// appear as values are created as roots as well.
//
// Parameters:
//   - parents: Map from class path to parent class path
//
// Returns:
//   - *ClassTable: Resolved hierarchy
//   - error: Non-nil if the map contains a cycle
func NewClassTable(parents map[string]string) (*ClassTable, error) {
	table := &ClassTable{classes: make(map[string]*StaticClass, len(parents))}

	// Deterministic construction order so error messages are stable.
	paths := make([]string, 0, len(parents))
	for p := range parents {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if _, err := table.build(p, parents, map[string]struct{}{}); err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (t *ClassTable) build(path string, parents map[string]string, visiting map[string]struct{}) (*StaticClass, error) {
	if c, ok := t.classes[path]; ok {
		return c, nil
	}
	if _, ok := visiting[path]; ok {
		return nil, fmt.Errorf("class hierarchy cycle at %q", path)
	}
	visiting[path] = struct{}{}

	var parent *StaticClass
	if pp := parents[path]; pp != "" {
		var err error
		parent, err = t.build(pp, parents, visiting)
		if err != nil {
			return nil, err
		}
	}

	c := NewClass(path, parent)
	t.classes[path] = c

	return c, nil
}

// Lookup returns the class registered under path.
//
// Returns:
//   - *StaticClass: Class node (nil if unknown)
//   - bool: true if the class exists in the table
func (t *ClassTable) Lookup(path string) (*StaticClass, bool) {
	c, ok := t.classes[path]
	return c, ok
}

// Len returns the number of classes in the table.
func (t *ClassTable) Len() int {
	return len(t.classes)
}
