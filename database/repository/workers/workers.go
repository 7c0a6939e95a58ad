package workersRepo

import (
	"context"
	"errors"

	"homely/models"
)

var (
	// ErrNotFound is returned when no worker carries the given id.
	ErrNotFound = errors.New("worker not found")
	// ErrUnavailable is returned by Claim when the worker's availability
	// flag is already down.
	ErrUnavailable = errors.New("worker not available")
)

// Repository holds the worker roster projection. The roster is owned by the
// identity collaborator; this repo only flips availability around
// assignments.
type Repository interface {
	Get(ctx context.Context, id string) (*models.Worker, error)
	Upsert(ctx context.Context, worker *models.Worker) error
	// Claim atomically flips availability true -> false.
	Claim(ctx context.Context, id string) error
	// ReleaseWorker flips availability back on.
	ReleaseWorker(ctx context.Context, id string) error
	ListAvailable(ctx context.Context, skill string) ([]models.Worker, error)
}
