package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/client"
	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/predictor"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Poller drives the live pipeline: every cycle it fetches the day's
// scoreboard, diffs each game's status against the stored one, and hands
// boundary crossings to the halftime and final handlers. A retention cron
// prunes games outside the two-day tracking window.
type Poller struct {
	cfg      *config.Config
	client   *client.Client
	db       *repository.Database
	halftime predictor.BoundaryHandler
	final    predictor.BoundaryHandler
	loc      *time.Location
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}

	// last sports day observed by the poll goroutine, for rollover logging
	lastDay string
}

// NewPoller creates a poller instance
func NewPoller(cfg *config.Config, cl *client.Client, db *repository.Database, halftime, final predictor.BoundaryHandler) (*Poller, error) {
	loc, err := time.LoadLocation(cfg.RolloverTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid rollover timezone %q: %w", cfg.RolloverTimezone, err)
	}

	return &Poller{
		cfg:      cfg,
		client:   cl,
		db:       db,
		halftime: halftime,
		final:    final,
		loc:      loc,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}, nil
}

// Start starts the poll loop and the retention cron
func (p *Poller) Start(ctx context.Context) error {
	log.Info().Msg("Poller starting...")

	if err := p.db.Seasons.GetOrCreate(ctx, p.cfg.SeasonYear); err != nil {
		return fmt.Errorf("failed to ensure season row: %w", err)
	}

	if _, err := p.cron.AddFunc(p.cfg.RetentionCron, func() {
		if err := p.sweepStaleGames(ctx); err != nil {
			log.Error().Err(err).Msg("Retention sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	p.cron.Start()
	log.Info().
		Str("schedule", p.cfg.RetentionCron).
		Msg("Retention sweep scheduled")

	p.ticker = time.NewTicker(p.cfg.PollInterval)
	log.Info().
		Dur("interval", p.cfg.PollInterval).
		Int("season", p.cfg.SeasonYear).
		Msg("Scoreboard polling started")

	go p.run(ctx)

	return nil
}

// Stop stops the poller
func (p *Poller) Stop() {
	log.Info().Msg("Stopping poller...")

	if p.cron != nil {
		p.cron.Stop()
	}

	if p.ticker != nil {
		p.ticker.Stop()
	}

	close(p.stopChan)
	log.Info().Msg("Poller stopped")
}

// run executes poll cycles until stopped
func (p *Poller) run(ctx context.Context) {
	// Run one cycle immediately so a restart mid-slate catches up without
	// waiting a full interval
	p.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping scoreboard polling")
			return
		case <-p.stopChan:
			log.Info().Msg("Stop signal received, stopping scoreboard polling")
			return
		case <-p.ticker.C:
			p.runCycle(ctx)
		}
	}
}

// currentDay returns the scoreboard date this cycle should fetch
func (p *Poller) currentDay() string {
	if p.cfg.TargetDate != "" {
		return p.cfg.TargetDate
	}
	return SportsDay(time.Now(), p.loc, p.cfg.RolloverHour)
}

// runCycle fetches one scoreboard snapshot and processes every game on it.
// A failed fetch skips the cycle; stored statuses are untouched so the next
// successful cycle still sees the boundary.
func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()
	day := p.currentDay()
	if p.lastDay != "" && day != p.lastDay {
		log.Info().Str("from", p.lastDay).Str("to", day).Msg("Sports day rolled over")
	}
	p.lastDay = day

	games, err := p.client.FetchScoreboard(ctx, day)
	if err != nil {
		metrics.RecordFetchError("scoreboard")
		log.Error().Err(err).Str("date", day).Msg("Scoreboard fetch failed, skipping cycle")
		return
	}

	for _, snap := range games {
		snap.Date = day
		snap.SeasonYear = p.cfg.SeasonYear
		if err := p.processGame(ctx, snap); err != nil {
			log.Error().Err(err).Str("game_id", snap.GameID).Msg("Failed to process game")
		}
	}

	metrics.RecordCycle(time.Since(start).Seconds(), len(games))
	log.Debug().
		Str("date", day).
		Int("games", len(games)).
		Dur("elapsed", time.Since(start)).
		Msg("Poll cycle complete")
}

// processGame diffs one snapshot against stored state and dispatches any
// boundary crossing. The new status is persisted before the handler runs;
// the handlers' own guards make a crash in between safe.
func (p *Poller) processGame(ctx context.Context, snap *models.GameSnapshot) error {
	prev, err := p.db.Games.GetPreviousStatus(ctx, snap.GameID)
	if err != nil {
		return fmt.Errorf("failed to load previous status: %w", err)
	}

	boundary := models.DetectBoundary(prev, snap.Status)

	if err := p.db.Games.Upsert(ctx, snap.ToGame(time.Now().UTC())); err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	if boundary == models.BoundaryNone {
		return nil
	}

	if !snap.HasScores() {
		log.Warn().
			Str("game_id", snap.GameID).
			Str("status", string(snap.Status)).
			Msg("Boundary crossed without scores, skipping")
		return nil
	}

	switch boundary {
	case models.BoundaryHalftime:
		metrics.RecordBoundary("halftime")
		log.Info().
			Str("game_id", snap.GameID).
			Str("home", snap.HomeName).
			Str("away", snap.AwayName).
			Int("home_score", *snap.HomeScore).
			Int("away_score", *snap.AwayScore).
			Msg("Halftime detected")
		return p.halftime.Handle(ctx, snap)
	case models.BoundaryFinal:
		metrics.RecordBoundary("final")
		log.Info().
			Str("game_id", snap.GameID).
			Int("home_score", *snap.HomeScore).
			Int("away_score", *snap.AwayScore).
			Msg("Final detected")
		return p.final.Handle(ctx, snap)
	}

	return nil
}

// sweepStaleGames removes tracked games outside the current two-day window
func (p *Poller) sweepStaleGames(ctx context.Context) error {
	today := p.currentDay()
	yesterday, err := PreviousDay(today)
	if err != nil {
		return err
	}

	pruned, err := p.db.Games.PruneOutsideWindow(ctx, today, yesterday)
	if err != nil {
		return fmt.Errorf("failed to prune stale games: %w", err)
	}

	if pruned > 0 {
		remaining, _ := p.db.Games.Count(ctx)
		log.Info().
			Int64("pruned", pruned).
			Int("remaining", remaining).
			Str("today", today).
			Msg("Stale games pruned")
	}
	return nil
}
