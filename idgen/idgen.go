// Package idgen generates record identifiers.
package idgen

import (
	"github.com/carcatalog/catalog"
	"github.com/google/uuid"
)

var _ catalog.IDGenerator = (*IDGenerator)(nil)

// IDGenerator hands out version 7 UUIDs, which sort by creation time and so
// keep primary key indexes append-mostly.
type IDGenerator struct {
	newFn func() (uuid.UUID, error)
}

// IDGeneratorOp is an option for an IDGenerator.
type IDGeneratorOp func(*IDGenerator)

// WithRandom switches the generator to random (version 4) UUIDs.
func WithRandom() IDGeneratorOp {
	return func(g *IDGenerator) {
		g.newFn = uuid.NewRandom
	}
}

// NewIDGenerator returns a new IDGenerator.
func NewIDGenerator(opts ...IDGeneratorOp) *IDGenerator {
	g := &IDGenerator{newFn: uuid.NewV7}
	for _, f := range opts {
		f(g)
	}
	return g
}

// ID returns a new identifier. It panics if the system entropy source fails.
func (g *IDGenerator) ID() uuid.UUID {
	return uuid.Must(g.newFn())
}
