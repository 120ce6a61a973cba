package announce

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/spinwin/internal/services/announce Service

// Service is the interface for the announcement text service
type Service interface {
	// GetWinMessage returns the public announcement for a win
	GetWinMessage(ctx context.Context, input *GetWinMessageInput) (*GetWinMessageOutput, error)

	// GetErrorMessage returns a visitor-friendly message for a rejected request
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}
