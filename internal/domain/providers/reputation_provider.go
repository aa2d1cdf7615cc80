package providers

import "context"

// ReputationProvider recomputes a provider's rating after a booking
// completes. The lifecycle engine calls it exactly once per completion,
// inside the same unit of work as the status change, and never on retries
// of an already-terminal booking.
type ReputationProvider interface {
	// RecomputeRating returns the provider's new rating given the job
	// count after the completion being applied
	RecomputeRating(ctx context.Context, providerID string, completedJobs int) (float64, error)
}
