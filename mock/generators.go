package mock

import (
	"fmt"
	"sync"
	"testing"

	"github.com/carcatalog/catalog"
	"github.com/google/uuid"
)

var _ catalog.IDGenerator = IDGenerator{}

// IDGenerator is mock implementation of catalog.IDGenerator.
type IDGenerator struct {
	IDFn func() uuid.UUID
}

// ID generates a new uuid.UUID from a mock function.
func (g IDGenerator) ID() uuid.UUID {
	return g.IDFn()
}

// NewIDGenerator is a simple way to create immutable id generator
func NewIDGenerator(s string, t testing.TB) IDGenerator {
	return IDGenerator{
		IDFn: func() uuid.UUID {
			id, err := uuid.Parse(s)
			if err != nil {
				t.Fatal(err)
			}
			return id
		},
	}
}

// NewSequentialIDGenerator returns ids 00000000-0000-0000-0000-000000000001,
// ...0002 and so on, counting from first.
func NewSequentialIDGenerator(first int) IDGenerator {
	var (
		mu   sync.Mutex
		next = first
	)
	return IDGenerator{
		IDFn: func() uuid.UUID {
			mu.Lock()
			defer mu.Unlock()
			id := SequentialID(next)
			next++
			return id
		},
	}
}

// SequentialID returns the n-th id handed out by a sequential generator.
func SequentialID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}
