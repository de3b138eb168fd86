package catalog

import "github.com/google/uuid"

// IDGenerator generates identifiers for new catalog records.
type IDGenerator interface {
	ID() uuid.UUID
}
