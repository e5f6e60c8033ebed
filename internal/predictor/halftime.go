package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/notifier"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/rs/zerolog/log"
)

// AliasSource tags which feed the alias table entries belong to
const AliasSource = "espn"

// StatsFetcher fetches first-half box-score stats for a game
type StatsFetcher interface {
	FetchFirstHalfStats(ctx context.Context, eventID string) (*models.HalfStats, error)
}

// Alerter dispatches a halftime alert, returning whether an attempt was made
type Alerter interface {
	Notify(ctx context.Context, alert notifier.HalftimeAlert) bool
}

// HalftimeHandler processes a game that has just crossed the halftime
// boundary: captures the event, scores a win-probability estimate, persists
// the prediction, and dispatches an alert. Every persistence step is
// independently idempotency-checked so a restart mid-handler cannot
// double-process.
type HalftimeHandler struct {
	cfg    *config.Config
	db     *repository.Database
	stats  StatsFetcher
	alerts Alerter
}

// NewHalftimeHandler creates a halftime handler
func NewHalftimeHandler(cfg *config.Config, db *repository.Database, stats StatsFetcher, alerts Alerter) *HalftimeHandler {
	return &HalftimeHandler{
		cfg:    cfg,
		db:     db,
		stats:  stats,
		alerts: alerts,
	}
}

// Handle runs the halftime pipeline for one snapshot. The caller guarantees
// the halftime boundary was crossed and both scores are present.
func (h *HalftimeHandler) Handle(ctx context.Context, snap *models.GameSnapshot) error {
	gameID := snap.GameID
	now := time.Now().UTC()

	// Existence of the event row is the guard against re-processing
	exists, err := h.db.Events.Exists(ctx, gameID)
	if err != nil {
		return fmt.Errorf("halftime idempotency check failed: %w", err)
	}
	if exists {
		log.Debug().Str("game_id", gameID).Msg("Halftime already processed")
		return nil
	}

	event := &models.HalftimeEvent{
		GameID:       gameID,
		Date:         snap.Date,
		SeasonYear:   h.cfg.SeasonYear,
		HomeHalftime: *snap.HomeScore,
		AwayHalftime: *snap.AwayScore,
		CapturedAt:   now,
	}
	if err := h.db.Events.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to persist halftime event: %w", err)
	}

	homeID, homeErr := h.db.Teams.ResolveAlias(ctx, AliasSource, snap.HomeName)
	awayID, awayErr := h.db.Teams.ResolveAlias(ctx, AliasSource, snap.AwayName)
	if homeErr != nil || awayErr != nil {
		metrics.UnmappedTeamsTotal.Inc()
		logUnmapped(snap, homeErr, awayErr)

		// The event row alone satisfies idempotency for future cycles;
		// no prediction without resolvable team identity.
		if err := h.db.Events.SetTeamIDs(ctx, gameID, nil, nil, AliasSource); err != nil {
			return fmt.Errorf("failed to record alias gap: %w", err)
		}
		return nil
	}

	if err := h.db.Events.SetTeamIDs(ctx, gameID, &homeID, &awayID, AliasSource); err != nil {
		return fmt.Errorf("failed to set event team ids: %w", err)
	}

	// Stats are best-effort: a failed summary fetch degrades the confidence
	// score to baseline-only instead of aborting
	var stats *models.HalfStats
	fetched, err := h.stats.FetchFirstHalfStats(ctx, gameID)
	if err != nil {
		metrics.RecordFetchError("summary")
		log.Warn().Err(err).Str("game_id", gameID).Msg("Failed to fetch halftime stats")
	} else {
		stats = fetched
		if err := h.db.Events.SetStats(ctx, gameID, stats); err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("Failed to persist halftime stats")
		}
	}

	halftimeMargin := snap.Margin()
	baselineProb, baselineWeight := LookupBaseline(halftimeMargin)

	explanation := models.Explanation{
		HalftimeMargin: halftimeMargin,
		BaselineProb:   baselineProb,
		HomeTeam:       snap.HomeName,
		AwayTeam:       snap.AwayName,
	}

	var confidence float64
	if stats != nil {
		var quality Quality
		confidence, quality = ConfidenceWithStats(baselineProb, baselineWeight, halftimeMargin, stats)
		explanation.Source = models.SourceBaselineStats
		explanation.StatsAvailable = true
		explanation.HQS = &quality.HQS
		explanation.ShootingExtreme = &quality.ShootingExtreme
	} else {
		confidence = BaselineConfidence(baselineProb, baselineWeight)
		explanation.Source = models.SourceBaselineOnly
	}

	bucket := BucketConfidence(confidence, h.cfg.BucketHighMin, h.cfg.BucketMediumMin)

	explanationJSON, err := json.Marshal(explanation)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation: %w", err)
	}

	pred := &models.Prediction{
		GameID:          gameID,
		SeasonYear:      h.cfg.SeasonYear,
		HomeWinProb:     baselineProb,
		PredictedMargin: float64(halftimeMargin), // placeholder until a margin model exists
		Confidence:      confidence,
		Bucket:          bucket,
		Explanation:     explanationJSON,
		CreatedAt:       now,
	}
	if err := h.db.Predictions.Create(ctx, pred); err != nil {
		return fmt.Errorf("failed to persist prediction: %w", err)
	}
	metrics.PredictionsCreated.WithLabelValues(bucket, explanation.Source).Inc()

	// Dispatch gated on the raw threshold; bucketing is informational only.
	// A failed dispatch never rolls back the already-persisted prediction.
	alert := notifier.HalftimeAlert{
		GameID:          gameID,
		HomeName:        snap.HomeName,
		AwayName:        snap.AwayName,
		HomeScore:       *snap.HomeScore,
		AwayScore:       *snap.AwayScore,
		HomeProb:        baselineProb,
		Confidence:      confidence,
		Bucket:          bucket,
		Margin:          halftimeMargin,
		HQS:             explanation.HQS,
		ShootingExtreme: explanation.ShootingExtreme,
	}
	h.alerts.Notify(ctx, alert)

	return nil
}

func logUnmapped(snap *models.GameSnapshot, homeErr, awayErr error) {
	ev := log.Error().
		Str("game_id", snap.GameID).
		Str("home", snap.HomeName).
		Str("away", snap.AwayName)

	if homeErr != nil && errors.Is(homeErr, repository.ErrUnmappedTeam) {
		ev = ev.Str("missing_home_alias", snap.HomeName)
	}
	if awayErr != nil && errors.Is(awayErr, repository.ErrUnmappedTeam) {
		ev = ev.Str("missing_away_alias", snap.AwayName)
	}

	ev.Msg("Team alias missing, add mapping via aliasadmin")
}
