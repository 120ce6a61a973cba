package feed

import (
	"context"

	"github.com/KirkDiggler/spinwin/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_feed.go github.com/KirkDiggler/spinwin/internal/services/feed Feed

// Feed pushes newly stored entries to interested listeners
type Feed interface {
	// Publish announces a stored entry
	Publish(ctx context.Context, entry *models.Entry) error

	// Subscribe returns a channel of published entries. The channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan *models.Entry, error)
}
