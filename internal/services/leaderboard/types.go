package leaderboard

import (
	"context"
	"time"

	"github.com/KirkDiggler/spinwin/internal/models"
)

// Row is one line of the board
type Row struct {
	Rank      int       `json:"rank"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prize     string    `json:"prize"`
	EntryDate time.Time `json:"entry_date"`
	Relative  string    `json:"relative"`
	Synthetic bool      `json:"synthetic"`
}

// Snapshot is the board at one moment, newest first
type Snapshot struct {
	Rows        []Row     `json:"rows"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Listener receives a fresh snapshot after every change
type Listener func(*Snapshot)

// Generator is the synthetic entry source merged into the board
type Generator interface {
	Start(ctx context.Context, sink func(*models.Entry)) error
	Stop()
	Entries() []*models.Entry
}
