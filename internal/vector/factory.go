package vector

import "fmt"

// NewVectorIndex creates a vector index by backend name. An empty name
// defaults to the in-memory index.
func NewVectorIndex(backend string, dimensions int) (VectorIndex, error) {
	switch backend {
	case "", "memory":
		return NewMemoryIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown vector index backend %q", backend)
	}
}
