package types

// ComponentID identifies a replicated component type in the transport layer.
type ComponentID uint32

// BoxConstraint selects entities inside an axis-aligned box.
type BoxConstraint struct {
	Center     Vector `json:"center"`
	EdgeLength Vector `json:"edgeLength"`
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b BoxConstraint) Contains(p Vector) bool {
	hx, hy, hz := b.EdgeLength.X/2, b.EdgeLength.Y/2, b.EdgeLength.Z/2

	return p.X >= b.Center.X-hx && p.X <= b.Center.X+hx &&
		p.Y >= b.Center.Y-hy && p.Y <= b.Center.Y+hy &&
		p.Z >= b.Center.Z-hz && p.Z <= b.Center.Z+hz
}

// QueryConstraint describes which entities a worker wants visibility into.
//
// It is an opaque descriptor for this library: strategies produce it and the
// transport layer turns it into an interest query. The zero value is the empty,
// permissive constraint (no restriction).
type QueryConstraint struct {
	// Box restricts interest to an axis-aligned region.
	Box *BoxConstraint `json:"box,omitempty"`

	// Component restricts interest to entities carrying the component (0 = none).
	Component ComponentID `json:"component,omitempty"`

	// And requires every nested constraint to match.
	And []QueryConstraint `json:"and,omitempty"`

	// Or requires at least one nested constraint to match.
	Or []QueryConstraint `json:"or,omitempty"`
}

// IsEmpty reports whether the constraint places no restriction.
func (q QueryConstraint) IsEmpty() bool {
	return q.Box == nil && q.Component == 0 && len(q.And) == 0 && len(q.Or) == 0
}
