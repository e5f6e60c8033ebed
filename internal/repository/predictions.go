package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PredictionRepository handles prediction database operations
type PredictionRepository struct {
	db *Database
}

// Create inserts a new prediction (one row per game)
func (r *PredictionRepository) Create(ctx context.Context, pred *models.Prediction) error {
	if pred == nil {
		return fmt.Errorf("prediction cannot be nil")
	}

	if err := validatePrediction(pred); err != nil {
		return fmt.Errorf("prediction validation failed: %w", err)
	}

	query := `
		INSERT INTO predictions (
			game_id, season_year,
			predicted_home_win_prob, predicted_margin,
			confidence, confidence_bucket,
			explanation, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		pred.GameID, pred.SeasonYear,
		pred.HomeWinProb, pred.PredictedMargin,
		pred.Confidence, pred.Bucket,
		pred.Explanation, pred.CreatedAt,
	)

	if err != nil {
		log.Error().Err(err).Str("game_id", pred.GameID).Msg("Failed to insert prediction")
		return fmt.Errorf("failed to create prediction: %w", err)
	}

	log.Info().
		Str("game_id", pred.GameID).
		Float64("home_win_prob", pred.HomeWinProb).
		Float64("confidence", pred.Confidence).
		Str("bucket", pred.Bucket).
		Msg("Prediction created")

	return nil
}

// GetByGameID retrieves the prediction for a game, or nil when none exists
func (r *PredictionRepository) GetByGameID(ctx context.Context, gameID string) (*models.Prediction, error) {
	query := `
		SELECT game_id, season_year,
		       predicted_home_win_prob, predicted_margin,
		       confidence, confidence_bucket,
		       explanation, created_at,
		       final_home_score, final_away_score, final_margin,
		       home_win, prediction_correct, resolved_bucket, resolved_at
		FROM predictions
		WHERE game_id = $1
	`

	pred := &models.Prediction{}
	err := r.db.Pool.QueryRow(ctx, query, gameID).Scan(
		&pred.GameID, &pred.SeasonYear,
		&pred.HomeWinProb, &pred.PredictedMargin,
		&pred.Confidence, &pred.Bucket,
		&pred.Explanation, &pred.CreatedAt,
		&pred.FinalHomeScore, &pred.FinalAwayScore, &pred.FinalMargin,
		&pred.HomeWin, &pred.Correct, &pred.ResolvedBucket, &pred.ResolvedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	return pred, nil
}

// Resolve grades a prediction against the true outcome. The resolution
// columns are written together; resolved_at doubles as the re-grade guard.
func (r *PredictionRepository) Resolve(
	ctx context.Context,
	gameID string,
	finalHome, finalAway, finalMargin, homeWin, correct int,
	bucket string,
	resolvedAt time.Time,
) error {
	query := `
		UPDATE predictions
		SET final_home_score = $1,
		    final_away_score = $2,
		    final_margin = $3,
		    home_win = $4,
		    prediction_correct = $5,
		    resolved_bucket = $6,
		    resolved_at = $7
		WHERE game_id = $8
	`

	result, err := r.db.Pool.Exec(ctx, query,
		finalHome, finalAway, finalMargin, homeWin, correct, bucket, resolvedAt, gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve prediction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("prediction not found: game_id=%s", gameID)
	}

	log.Info().
		Str("game_id", gameID).
		Int("final_margin", finalMargin).
		Bool("correct", correct == 1).
		Msg("Prediction resolved")

	return nil
}

func validatePrediction(pred *models.Prediction) error {
	if pred.GameID == "" {
		return fmt.Errorf("game_id is required")
	}
	if pred.HomeWinProb < 0 || pred.HomeWinProb > 1 {
		return fmt.Errorf("predicted_home_win_prob must be between 0 and 1")
	}
	if pred.Confidence < 0 {
		return fmt.Errorf("confidence must be non-negative")
	}
	if pred.CreatedAt.IsZero() {
		return fmt.Errorf("created_at is required")
	}
	return nil
}
