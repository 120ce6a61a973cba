package entry

import (
	"context"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/spinwin/internal/repositories/entry Repository

// Repository defines the interface for entry persistence
type Repository interface {
	// CreateEntry stores a new entry
	CreateEntry(ctx context.Context, input *CreateEntryInput) error

	// HasEntryForMobile reports whether any entry exists for the full mobile number
	HasEntryForMobile(ctx context.Context, input *HasEntryForMobileInput) (bool, error)

	// GetRecentEntries returns the newest entries first
	GetRecentEntries(ctx context.Context, input *GetRecentEntriesInput) (*GetRecentEntriesOutput, error)

	// Ping checks the backing store is reachable
	Ping(ctx context.Context) error
}
