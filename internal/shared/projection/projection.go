// Package projection pairs an aggregate with the timestamps its store keeps for it.
package projection

import "time"

// Metadata holds store timestamps, always in UTC.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection is what repositories hand back: the aggregate plus Metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// New builds a projection, normalising both timestamps to UTC.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt.UTC(), UpdatedAt: updatedAt.UTC()},
	}
}
