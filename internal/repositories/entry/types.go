package entry

import (
	"errors"

	"github.com/KirkDiggler/spinwin/internal/models"
)

var (
	ErrNilConfig     = errors.New("config cannot be nil")
	ErrNilEntry      = errors.New("input and entry cannot be nil")
	ErrEmptyEntryID  = errors.New("entry ID cannot be empty")
	ErrEmptyMobile   = errors.New("mobile cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrSyntheticSave = errors.New("synthetic entries cannot be stored")
)

// CreateEntryInput contains parameters for storing an entry
type CreateEntryInput struct {
	Entry *models.Entry
}

// HasEntryForMobileInput contains parameters for the duplicate check
type HasEntryForMobileInput struct {
	Mobile string
}

// GetRecentEntriesInput contains parameters for listing recent entries
type GetRecentEntriesInput struct {
	Limit int
}

// GetRecentEntriesOutput contains recent entries, newest first
type GetRecentEntriesOutput struct {
	Entries []*models.Entry
}

func validateEntry(input *CreateEntryInput) error {
	if input == nil || input.Entry == nil {
		return ErrNilEntry
	}
	if input.Entry.ID == "" {
		return ErrEmptyEntryID
	}
	if input.Entry.Mobile == "" {
		return ErrEmptyMobile
	}
	if input.Entry.Synthetic {
		return ErrSyntheticSave
	}
	return nil
}
