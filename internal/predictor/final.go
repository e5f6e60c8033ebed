package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/rs/zerolog/log"
)

// FinalResolver grades a game's halftime prediction against the final score
// and records the outcome. Resolution runs exactly once per game; the null
// resolved_at column is the guard.
type FinalResolver struct {
	cfg *config.Config
	db  *repository.Database
}

// NewFinalResolver creates a final-score resolver
func NewFinalResolver(cfg *config.Config, db *repository.Database) *FinalResolver {
	return &FinalResolver{cfg: cfg, db: db}
}

// Handle runs the resolution pipeline for one snapshot. The caller
// guarantees the final boundary was crossed and both scores are present.
func (r *FinalResolver) Handle(ctx context.Context, snap *models.GameSnapshot) error {
	gameID := snap.GameID
	finalHome := *snap.HomeScore
	finalAway := *snap.AwayScore

	if err := r.db.Games.SetFinal(ctx, gameID, finalHome, finalAway); err != nil {
		return fmt.Errorf("failed to record final score: %w", err)
	}

	pred, err := r.db.Predictions.GetByGameID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to load prediction: %w", err)
	}
	if pred == nil {
		// Final without a halftime prediction (unmapped teams, started
		// mid-game, or missed halftime boundary). Nothing to grade.
		log.Debug().Str("game_id", gameID).Msg("Final with no prediction to resolve")
		return nil
	}
	if pred.IsResolved() {
		log.Debug().Str("game_id", gameID).Msg("Prediction already resolved")
		return nil
	}

	finalMargin := finalHome - finalAway

	homeWin := 0
	if finalHome > finalAway {
		homeWin = 1
	}
	predictedHomeWin := 0
	if pred.HomeWinProb >= 0.5 {
		predictedHomeWin = 1
	}
	correct := 0
	if homeWin == predictedHomeWin {
		correct = 1
	}

	// Re-bucket from the stored confidence so historical rows stay
	// comparable even if the thresholds move between seasons
	bucket := BucketConfidence(pred.Confidence, r.cfg.BucketHighMin, r.cfg.BucketMediumMin)

	if err := r.db.Predictions.Resolve(ctx, gameID, finalHome, finalAway, finalMargin, homeWin, correct, bucket, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to resolve prediction: %w", err)
	}
	metrics.PredictionsResolved.WithLabelValues(fmt.Sprintf("%t", correct == 1)).Inc()

	log.Info().
		Str("game_id", gameID).
		Int("final_home", finalHome).
		Int("final_away", finalAway).
		Float64("home_win_prob", pred.HomeWinProb).
		Bool("correct", correct == 1).
		Str("bucket", bucket).
		Msg("Prediction resolved")

	return nil
}

// ensure handlers satisfy a common shape for the poll loop
var (
	_ BoundaryHandler = (*HalftimeHandler)(nil)
	_ BoundaryHandler = (*FinalResolver)(nil)
)

// BoundaryHandler processes a game snapshot that crossed a lifecycle boundary
type BoundaryHandler interface {
	Handle(ctx context.Context, snap *models.GameSnapshot) error
}
