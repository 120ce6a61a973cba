package announce

// MessageTone represents the tone of a message
type MessageTone string

const (
	// ToneNeutral states the facts only
	ToneNeutral MessageTone = "neutral"

	// ToneCelebration is the default for wins
	ToneCelebration MessageTone = "celebration"

	// ToneEncouraging is used for rejected visitors
	ToneEncouraging MessageTone = "encouraging"
)

// ErrorType names the rejection a visitor-facing message is for
type ErrorType string

const (
	ErrorTypeAlreadyEntered ErrorType = "already_entered"
	ErrorTypeAlreadySpun    ErrorType = "already_spun"
	ErrorTypeSpinInFlight   ErrorType = "spin_in_flight"
	ErrorTypeSessionExpired ErrorType = "session_expired"
	ErrorTypeInvalidForm    ErrorType = "invalid_form"
	ErrorTypeRateLimited    ErrorType = "rate_limited"
)

// GetWinMessageInput contains parameters for a win announcement
type GetWinMessageInput struct {
	// Name is the winner's display name
	Name string

	// Prize is the prize name as shown on the wheel
	Prize string

	// PreferredTone is optional
	PreferredTone MessageTone
}

// GetWinMessageOutput contains a win announcement
type GetWinMessageOutput struct {
	// Title is a short heading, e.g. for a notification
	Title string

	// Message always names the winner and the prize
	Message string

	Tone MessageTone
}

// GetErrorMessageInput contains parameters for a rejection message
type GetErrorMessageInput struct {
	ErrorType     ErrorType
	PreferredTone MessageTone
}

// GetErrorMessageOutput contains a rejection message
type GetErrorMessageOutput struct {
	Message string
	Tone    MessageTone
}
