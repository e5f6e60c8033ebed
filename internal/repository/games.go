package repository

import (
	"context"
	"fmt"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// GameRepository handles tracked-game database operations
type GameRepository struct {
	db *Database
}

// Upsert inserts or updates a tracked game. Called unconditionally on every
// poll cycle so a stale snapshot can never mask a later genuine transition.
func (r *GameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO daily_games (
			game_id, date, season_year, start_time, status,
			home_name, away_name,
			home_feed_team_id, away_feed_team_id,
			home_score, away_score,
			last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO UPDATE SET
			date = EXCLUDED.date,
			season_year = EXCLUDED.season_year,
			start_time = EXCLUDED.start_time,
			status = EXCLUDED.status,
			home_name = EXCLUDED.home_name,
			away_name = EXCLUDED.away_name,
			home_feed_team_id = EXCLUDED.home_feed_team_id,
			away_feed_team_id = EXCLUDED.away_feed_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			last_seen_at = EXCLUDED.last_seen_at
	`

	_, err := r.db.Pool.Exec(
		ctx, query,
		game.GameID, game.Date, game.SeasonYear, game.StartTime, game.Status,
		game.HomeName, game.AwayName,
		game.HomeFeed, game.AwayFeed,
		game.HomeScore, game.AwayScore,
		game.LastSeen,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	return nil
}

// GetPreviousStatus returns the last-persisted status for a game.
// A game never seen before reads as PRE.
func (r *GameRepository) GetPreviousStatus(ctx context.Context, gameID string) (models.GameStatus, error) {
	query := `SELECT status FROM daily_games WHERE game_id = $1`

	var status string
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(&status)

	if err == pgx.ErrNoRows {
		return models.StatusPre, nil
	}
	if err != nil {
		return models.StatusPre, fmt.Errorf("failed to get previous status: %w", err)
	}

	return models.ParseStatus(status), nil
}

// GetByGameID retrieves a tracked game by its upstream game identifier
func (r *GameRepository) GetByGameID(ctx context.Context, gameID string) (*models.Game, error) {
	query := `
		SELECT game_id, date, season_year, start_time, status,
		       home_name, away_name,
		       home_feed_team_id, away_feed_team_id,
		       home_score, away_score,
		       last_seen_at
		FROM daily_games
		WHERE game_id = $1
	`

	var game models.Game
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&game.GameID, &game.Date, &game.SeasonYear, &game.StartTime, &game.Status,
		&game.HomeName, &game.AwayName,
		&game.HomeFeed, &game.AwayFeed,
		&game.HomeScore, &game.AwayScore,
		&game.LastSeen,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("game not found: game_id=%s", gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return &game, nil
}

// SetFinal persists final scores and FINAL status on the game record.
// Safe to call repeatedly; repeated finals overwrite with the same values.
func (r *GameRepository) SetFinal(ctx context.Context, gameID string, homeScore, awayScore int) error {
	query := `
		UPDATE daily_games
		SET status = $1, home_score = $2, away_score = $3, last_seen_at = NOW()
		WHERE game_id = $4
	`

	result, err := r.db.Pool.Exec(ctx, query, string(models.StatusFinal), homeScore, awayScore, gameID)
	if err != nil {
		return fmt.Errorf("failed to finalize game: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game not found: game_id=%s", gameID)
	}

	return nil
}

// PruneOutsideWindow drops tracked games outside the given sports days
// (current + previous) to bound storage
func (r *GameRepository) PruneOutsideWindow(ctx context.Context, today, yesterday string) (int64, error) {
	query := `DELETE FROM daily_games WHERE date NOT IN ($1, $2)`

	result, err := r.db.Pool.Exec(ctx, query, today, yesterday)
	if err != nil {
		return 0, fmt.Errorf("failed to prune stale games: %w", err)
	}

	pruned := result.RowsAffected()
	if pruned > 0 {
		log.Info().Int64("count", pruned).Msg("Pruned stale tracked games")
	}

	return pruned, nil
}

// Count returns the total number of tracked games
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM daily_games`

	var count int
	err := r.db.Pool.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
