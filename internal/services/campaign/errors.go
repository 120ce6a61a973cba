package campaign

// CampaignError is a custom error type for campaign errors
type CampaignError string

// Error implements the error interface
func (e CampaignError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNameRequired     CampaignError = "name is required"
	ErrMobileRequired   CampaignError = "mobile number is required"
	ErrAlreadyEntered   CampaignError = "this mobile number has already entered"
	ErrSessionNotFound  CampaignError = "session not found"
	ErrServiceClosed    CampaignError = "campaign is shutting down"
	ErrNilConfig        CampaignError = "config cannot be nil"
	ErrNilTable         CampaignError = "slice table cannot be nil"
	ErrNilRepository    CampaignError = "entry repository cannot be nil"
	ErrNilFeed          CampaignError = "feed cannot be nil"
	ErrNilClock         CampaignError = "clock cannot be nil"
	ErrNilUUIDGenerator CampaignError = "UUID generator cannot be nil"
	ErrNilRandom        CampaignError = "random source cannot be nil"
)
