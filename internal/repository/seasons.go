package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// SeasonRepository handles season reference rows
type SeasonRepository struct {
	db *Database
}

// GetOrCreate ensures a season row exists for the year. Seasons are never
// mutated or deleted after creation.
func (r *SeasonRepository) GetOrCreate(ctx context.Context, year int) error {
	query := `
		INSERT INTO seasons (year)
		VALUES ($1)
		ON CONFLICT (year) DO NOTHING
	`

	result, err := r.db.Pool.Exec(ctx, query, year)
	if err != nil {
		return fmt.Errorf("failed to get or create season: %w", err)
	}

	if result.RowsAffected() > 0 {
		log.Info().Int("year", year).Msg("Season created")
	}

	return nil
}
