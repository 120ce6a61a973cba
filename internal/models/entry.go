package models

import (
	"time"
)

// UnknownIP is stored when the origin address could not be determined
const UnknownIP = "unknown"

// Entry is a persisted win. Entries are written once and never changed.
type Entry struct {
	// ID is a unique identifier for the entry
	ID string `json:"id"`

	// Name is the winner's display name
	Name string `json:"name"`

	// Mobile is country code plus local number
	Mobile string `json:"mobile"`

	// SelectedPrize is the prize name exactly as it was shown
	SelectedPrize string `json:"selected_prize"`

	// PrizeID is the catalog id of the prize
	PrizeID int `json:"prize_id"`

	// EntryDate is when the win was recorded
	EntryDate time.Time `json:"entry_date"`

	// IPAddress is the origin address or UnknownIP
	IPAddress string `json:"ip_address"`

	// Synthetic marks generated display-only entries; they are never stored
	Synthetic bool `json:"synthetic,omitempty"`
}
