package campaign

import (
	"time"

	"github.com/KirkDiggler/spinwin/internal/wheel"
)

// SpinStatus is where a session's spin stands
type SpinStatus string

const (
	SpinStatusIdle    SpinStatus = "idle"
	SpinStatusPending SpinStatus = "pending"
	SpinStatusWon     SpinStatus = "won"
)

// Reasons a spin was not accepted
const (
	RejectAlreadySpun = "already_spun"
	RejectInFlight    = "in_flight"
)

// RegisterInput is the submitted entry form
type RegisterInput struct {
	Name        string
	CountryCode string
	Mobile      string

	// OriginIP is the client address, may be empty
	OriginIP string
}

// RegisterOutput contains the new session
type RegisterOutput struct {
	SessionID string

	// Name and Mobile are the normalized values that will be stored
	Name   string
	Mobile string
}

// SpinInput contains parameters for spinning
type SpinInput struct {
	SessionID string
}

// SpinOutput describes the spin as it starts
type SpinOutput struct {
	Accepted bool

	// Reason is set when the spin was not accepted
	Reason string

	// Rotation is the wheel's cumulative rotation in degrees; clients
	// animate to it
	Rotation float64

	SliceIndex int
	Duration   time.Duration
}

// GetResultInput contains parameters for reading a result
type GetResultInput struct {
	SessionID string
}

// GetResultOutput contains the session's spin state
type GetResultOutput struct {
	Status   SpinStatus
	Name     string
	Rotation float64

	// Prize and SliceIndex are set once Status is won
	Prize      *wheel.Prize
	SliceIndex int
}

// GetWheelOutput describes the wheel for clients
type GetWheelOutput struct {
	Prizes   []wheel.Prize
	Slices   []wheel.Slice
	Geometry wheel.Geometry
	Policy   string
	Duration time.Duration
}
