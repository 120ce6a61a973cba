package wheel

import "time"

// Prize is one awardable item of the catalog
type Prize struct {
	// ID identifies the prize; slices refer to it
	ID int `json:"id" yaml:"id"`

	// Name is shown verbatim to the visitor and persisted as what was won
	Name string `json:"name" yaml:"name"`

	// ColorHint is a rendering hint for clients
	ColorHint string `json:"color_hint" yaml:"color_hint"`

	// Weight is the relative selection weight; weights need not sum to 1
	Weight float64 `json:"weight" yaml:"weight"`
}

// Slice is one equal angular partition of the wheel
type Slice struct {
	// PrizeID is the catalog prize this slice awards
	PrizeID int `json:"prize_id" yaml:"prize_id"`

	// Label is the display text, one entry per line
	Label []string `json:"label" yaml:"label"`
}

// SpinResult is what a completed spin reports
type SpinResult struct {
	Prize        Prize
	SliceIndex   int
	LandingAngle float64
}

// SpinStart describes an accepted spin at the moment it starts
type SpinStart struct {
	// SliceIndex is the slice the policy aimed at
	SliceIndex int

	// Rotation is the new cumulative rotation in degrees
	Rotation float64

	// Turns is the number of extra full turns added for effect
	Turns int

	// Duration is how long until the result is reported
	Duration time.Duration
}

// SpinRequest carries the per-spin callbacks. Values the completion
// handler needs should be captured when the request is built.
type SpinRequest struct {
	// Eligible reports whether the caller may spin; nil means always.
	// It is called with the wheel locked and must not call back into the wheel.
	Eligible func() bool

	// OnStart runs synchronously once the spin is accepted, before the
	// rotation is computed
	OnStart func()

	// OnComplete runs exactly once after the spin duration has elapsed
	OnComplete func(SpinResult)
}
