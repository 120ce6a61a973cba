package notifier

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_notifier.go github.com/KirkDiggler/spinwin/internal/services/notifier Notifier

// Notifier tells an external system about a stored win. Notifications are
// fire-and-forget: callers log failures and never retry.
type Notifier interface {
	Notify(ctx context.Context, input *NotifyInput) error
}
