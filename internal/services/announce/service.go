package announce

import (
	"context"
	"errors"
	"fmt"

	"github.com/KirkDiggler/spinwin/internal/common/random"
)

// WinTitle heads every win announcement
const WinTitle = "New Winner!"

// ServiceConfig holds configuration for the announcement service
type ServiceConfig struct {
	// Random picks between equivalent lines
	Random random.Source
}

// service implements the Service interface
type service struct {
	random random.Source
}

// NewService creates a new announcement service
func NewService(config *ServiceConfig) (Service, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	if config.Random == nil {
		return nil, errors.New("random source cannot be nil")
	}

	return &service{
		random: config.Random,
	}, nil
}

// GetWinMessage returns a message naming the winner and the prize
func (s *service) GetWinMessage(ctx context.Context, input *GetWinMessageInput) (*GetWinMessageOutput, error) {
	if input == nil || input.Name == "" || input.Prize == "" {
		return nil, errors.New("name and prize are required")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = ToneCelebration
	}

	var templates []string
	switch tone {
	case ToneNeutral:
		templates = []string{
			"%s just won %s!",
		}
	default:
		templates = []string{
			"%s just won %s!",
			"Congratulations %s, you just won %s!",
			"%s spun the wheel and won %s!",
			"Big win! %s takes home %s!",
			"The wheel has spoken: %s wins %s!",
		}
	}

	template := templates[s.random.Intn(len(templates))]

	return &GetWinMessageOutput{
		Title:   WinTitle,
		Message: fmt.Sprintf(template, input.Name, input.Prize),
		Tone:    tone,
	}, nil
}

// GetErrorMessage returns a friendly message for a rejected request
func (s *service) GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	tone := input.PreferredTone
	if tone == "" {
		tone = ToneEncouraging
	}

	var messages []string
	switch input.ErrorType {
	case ErrorTypeAlreadyEntered:
		messages = []string{
			"This number has already taken part. Only one spin per person!",
			"Looks like you've already spun the wheel with this number.",
			"One spin per mobile number, and this one has had its turn.",
		}
	case ErrorTypeAlreadySpun:
		messages = []string{
			"You've already won! Check your prize above.",
			"Your spin is done and your prize is locked in.",
		}
	case ErrorTypeSpinInFlight:
		messages = []string{
			"Hold on, the wheel is still spinning!",
			"Patience! Your prize is on its way.",
		}
	case ErrorTypeSessionExpired:
		messages = []string{
			"Your session has expired. Please fill in the form again.",
		}
	case ErrorTypeInvalidForm:
		messages = []string{
			"Please enter your name and mobile number to spin.",
		}
	case ErrorTypeRateLimited:
		messages = []string{
			"Whoa, slow down! Try again in a moment.",
			"Too many requests. Take a breath and try again shortly.",
		}
	default:
		messages = []string{
			"Something went wrong. Please try again.",
		}
	}

	return &GetErrorMessageOutput{
		Message: messages[s.random.Intn(len(messages))],
		Tone:    tone,
	}, nil
}
