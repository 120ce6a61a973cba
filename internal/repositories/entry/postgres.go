package entry

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	insertEntrySQL = `INSERT INTO wheel_entries
		(id, name, mobile, selected_prize, prize_id, entry_date, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	hasMobileSQL = `SELECT EXISTS (SELECT 1 FROM wheel_entries WHERE mobile = $1)`

	recentEntriesSQL = `SELECT id, name, mobile, selected_prize, prize_id, entry_date, ip_address
		FROM wheel_entries
		ORDER BY entry_date DESC
		LIMIT $1`
)

// PostgresConfig holds configuration for the Postgres entry repository
type PostgresConfig struct {
	Pool *pgxpool.Pool
}

// postgresRepository implements the Repository interface using Postgres
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed entry repository
func NewPostgres(cfg *PostgresConfig) (*postgresRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Pool == nil {
		return nil, errors.New("postgres pool cannot be nil")
	}

	return &postgresRepository{
		pool: cfg.Pool,
	}, nil
}

// Migrate applies the embedded schema files in name order. Every file is
// idempotent so it is safe to run on each start.
func (r *postgresRepository) Migrate(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if _, err := r.pool.Exec(ctx, string(script)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

// CreateEntry inserts one row
func (r *postgresRepository) CreateEntry(ctx context.Context, input *CreateEntryInput) error {
	if err := validateEntry(input); err != nil {
		return err
	}

	e := input.Entry
	_, err := r.pool.Exec(ctx, insertEntrySQL,
		e.ID, e.Name, e.Mobile, e.SelectedPrize, e.PrizeID, e.EntryDate, e.IPAddress)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// HasEntryForMobile runs an EXISTS query on the mobile column
func (r *postgresRepository) HasEntryForMobile(ctx context.Context, input *HasEntryForMobileInput) (bool, error) {
	if input == nil || input.Mobile == "" {
		return false, ErrEmptyMobile
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, hasMobileSQL, input.Mobile).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check mobile: %w", err)
	}

	return exists, nil
}

// GetRecentEntries returns up to Limit rows ordered by entry date
func (r *postgresRepository) GetRecentEntries(ctx context.Context, input *GetRecentEntriesInput) (*GetRecentEntriesOutput, error) {
	if input == nil || input.Limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := r.pool.Query(ctx, recentEntriesSQL, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Entry, error) {
		var e models.Entry
		err := row.Scan(&e.ID, &e.Name, &e.Mobile, &e.SelectedPrize, &e.PrizeID, &e.EntryDate, &e.IPAddress)
		return &e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan entries: %w", err)
	}

	return &GetRecentEntriesOutput{
		Entries: entries,
	}, nil
}

// Ping checks the pool can reach the database
func (r *postgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
