package campaign

import "context"

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/spinwin/internal/services/campaign Service

// Service runs a promotion: visitors register, spin their own wheel once
// and the win is stored and announced
type Service interface {
	// Register validates the entry form and opens a session with a fresh wheel
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Spin starts the session's wheel; a spin that is not allowed is
	// reported as not accepted rather than as an error
	Spin(ctx context.Context, input *SpinInput) (*SpinOutput, error)

	// GetResult reports whether the session's spin is idle, pending or won
	GetResult(ctx context.Context, input *GetResultInput) (*GetResultOutput, error)

	// GetWheel describes the wheel for rendering
	GetWheel(ctx context.Context) (*GetWheelOutput, error)

	// Close stops background work
	Close() error
}
