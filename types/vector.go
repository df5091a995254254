package types

// Vector is a position in world space.
type Vector struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// ZeroVector is the world origin. Returned by position queries that cannot answer.
var ZeroVector = Vector{}
