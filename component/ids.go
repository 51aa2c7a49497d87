package component

import "sync/atomic"

// IDGenerator hands out non-zero stage identifiers. Zero is reserved for
// aggregated metrics. After math.MaxUint32 the sequence wraps to 1.
type IDGenerator struct {
	last atomic.Uint32
}

// NewIDGenerator returns an independent generator whose first id is 1.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next identifier.
func (g *IDGenerator) Next() uint32 {
	for {
		cur := g.last.Load()
		next := cur + 1
		if next == 0 {
			next = 1
		}
		if g.last.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Peek returns the most recently issued identifier, or 0 if none.
func (g *IDGenerator) Peek() uint32 {
	return g.last.Load()
}

var defaultIDs = NewIDGenerator()

// DefaultIDs returns the process-wide generator used when a stage is
// constructed without an explicit one.
func DefaultIDs() *IDGenerator {
	return defaultIDs
}
