package types

// LayerName names one partition of simulation responsibility (physics, AI, gameplay, ...).
type LayerName string

const (
	// DefaultLayer is the fallback layer. It always exists in an initialized layered strategy
	// and receives every class that has no explicit mapping.
	DefaultLayer LayerName = "Default"

	// NoLayer is returned only when classifying an absent class identity.
	NoLayer LayerName = ""
)

// IsDefault reports whether l is the default layer.
func (l LayerName) IsDefault() bool {
	return l == DefaultLayer
}

// String returns the layer name.
func (l LayerName) String() string {
	return string(l)
}
