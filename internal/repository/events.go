package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// EventRepository handles halftime-event database operations
type EventRepository struct {
	db *Database
}

// Exists reports whether a halftime event has been captured for the game.
// This is the idempotency guard for the halftime handler.
func (r *EventRepository) Exists(ctx context.Context, gameID string) (bool, error) {
	query := `SELECT 1 FROM halftime_events WHERE game_id = $1`

	var one int
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(&one)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check halftime event: %w", err)
	}

	return true, nil
}

// Create inserts a halftime event
func (r *EventRepository) Create(ctx context.Context, event *models.HalftimeEvent) error {
	query := `
		INSERT INTO halftime_events (
			game_id, date, season_year,
			home_halftime, away_halftime,
			captured_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		event.GameID, event.Date, event.SeasonYear,
		event.HomeHalftime, event.AwayHalftime,
		event.CapturedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create halftime event: %w", err)
	}

	log.Info().
		Str("game_id", event.GameID).
		Int("home", event.HomeHalftime).
		Int("away", event.AwayHalftime).
		Msg("Halftime event captured")

	return nil
}

// SetTeamIDs records the resolved internal team ids on the event.
// Null ids are valid: they mark an alias gap to fix manually.
func (r *EventRepository) SetTeamIDs(ctx context.Context, gameID string, homeTeamID, awayTeamID *int, aliasSource string) error {
	query := `
		UPDATE halftime_events
		SET home_team_id = $1, away_team_id = $2, alias_source = $3
		WHERE game_id = $4
	`

	_, err := r.db.Pool.Exec(ctx, query, homeTeamID, awayTeamID, aliasSource, gameID)
	if err != nil {
		return fmt.Errorf("failed to set event team ids: %w", err)
	}

	return nil
}

// SetStats stores the raw first-half box-score snapshot on the event
func (r *EventRepository) SetStats(ctx context.Context, gameID string, stats *models.HalfStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal halftime stats: %w", err)
	}

	query := `UPDATE halftime_events SET halftime_stats = $1 WHERE game_id = $2`

	_, err = r.db.Pool.Exec(ctx, query, payload, gameID)
	if err != nil {
		return fmt.Errorf("failed to set halftime stats: %w", err)
	}

	return nil
}

// GetByGameID retrieves a halftime event
func (r *EventRepository) GetByGameID(ctx context.Context, gameID string) (*models.HalftimeEvent, error) {
	query := `
		SELECT game_id, date, season_year,
		       home_halftime, away_halftime,
		       home_team_id, away_team_id, alias_source,
		       halftime_stats, captured_at
		FROM halftime_events
		WHERE game_id = $1
	`

	var event models.HalftimeEvent
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&event.GameID, &event.Date, &event.SeasonYear,
		&event.HomeHalftime, &event.AwayHalftime,
		&event.HomeTeamID, &event.AwayTeamID, &event.AliasSource,
		&event.StatsJSON, &event.CapturedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("halftime event not found: game_id=%s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get halftime event: %w", err)
	}

	return &event, nil
}
