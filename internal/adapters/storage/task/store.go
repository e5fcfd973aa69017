package task

import (
	"context"
	"time"

	domain "clubportal/internal/domain/task"
)

// Store persists Task state. Tasks are never deleted; they move through the
// status lifecycle via TransitionStatus.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Task, error)
	Save(ctx context.Context, value domain.Task) error
	List(ctx context.Context, filter ListFilter) ([]domain.Task, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	TransitionStatus(ctx context.Context, id string, from, to domain.Status, updatedAt time.Time) (bool, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit      int
	Offset     int
	Status     domain.Status
	AssignedTo string
}
