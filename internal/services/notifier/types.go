package notifier

import (
	"errors"
	"time"

	"github.com/KirkDiggler/spinwin/internal/models"
)

var (
	ErrNilConfig = errors.New("config cannot be nil")
	ErrNilEntry  = errors.New("input and entry cannot be nil")
)

// NotifyInput contains the entry to announce
type NotifyInput struct {
	Entry *models.Entry
}

// Payload is the JSON body sent to webhooks and the message bus
type Payload struct {
	Name          string `json:"name"`
	Mobile        string `json:"mobile"`
	SelectedPrize string `json:"selected_prize"`
	PrizeID       int    `json:"prize_id"`
	EntryDate     string `json:"entry_date"`
	IPAddress     string `json:"ip_address"`
}

// NewPayload flattens an entry for the wire
func NewPayload(e *models.Entry) *Payload {
	return &Payload{
		Name:          e.Name,
		Mobile:        e.Mobile,
		SelectedPrize: e.SelectedPrize,
		PrizeID:       e.PrizeID,
		EntryDate:     e.EntryDate.UTC().Format(time.RFC3339),
		IPAddress:     e.IPAddress,
	}
}

func validate(input *NotifyInput) error {
	if input == nil || input.Entry == nil {
		return ErrNilEntry
	}
	return nil
}
