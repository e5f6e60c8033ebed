package predictor

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/notifier"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests for the boundary handlers
// Run with: go test -v ./internal/predictor/... against a local test database

func setupTestDB(t *testing.T) (*repository.Database, context.Context) {
	ctx := context.Background()

	cfg := repository.Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "ncaa_mbb_test",
		User:     "mbb_user",
		Password: "mbb_password",
		SSLMode:  "disable",
	}

	db, err := repository.NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func testConfig() *config.Config {
	return &config.Config{
		SeasonYear:      2026,
		NotifyThreshold: 0.10,
		BucketHighMin:   0.20,
		BucketMediumMin: 0.10,
	}
}

type fakeStatsFetcher struct {
	calls int
	stats *models.HalfStats
	err   error
}

func (f *fakeStatsFetcher) FetchFirstHalfStats(ctx context.Context, eventID string) (*models.HalfStats, error) {
	f.calls++
	return f.stats, f.err
}

type fakeAlerter struct {
	alerts []notifier.HalftimeAlert
}

func (f *fakeAlerter) Notify(ctx context.Context, alert notifier.HalftimeAlert) bool {
	f.alerts = append(f.alerts, alert)
	return true
}

func cleanupHandlerGame(t *testing.T, db *repository.Database, gameID string) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.Pool.Exec(ctx, `DELETE FROM predictions WHERE game_id = $1`, gameID)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM halftime_events WHERE game_id = $1`, gameID)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM daily_games WHERE game_id = $1`, gameID)
	})
}

func seedTeamAlias(t *testing.T, db *repository.Database, ctx context.Context, slug, name string) {
	t.Cleanup(func() {
		c := context.Background()
		_, _ = db.Pool.Exec(c, `DELETE FROM team_aliases WHERE team_id IN (SELECT id FROM teams WHERE slug = $1)`, slug)
		_, _ = db.Pool.Exec(c, `DELETE FROM teams WHERE slug = $1`, slug)
	})

	team := &models.Team{Slug: slug, Name: name}
	require.NoError(t, db.Teams.Upsert(ctx, team))
	require.NoError(t, db.Teams.UpsertAlias(ctx, &models.TeamAlias{
		AliasSource:   AliasSource,
		AliasName:     name,
		TeamID:        team.ID,
		MappingSource: "manual",
	}))
}

func countRows(t *testing.T, db *repository.Database, ctx context.Context, table, gameID string) int {
	var n int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE game_id = $1`, gameID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestHalftimeHandler_SecondCallIsNoOp(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()

	const gameID = "test-handler-3000"
	cleanupHandlerGame(t, db, gameID)
	require.NoError(t, db.Seasons.GetOrCreate(ctx, 2026))
	seedTeamAlias(t, db, ctx, "test-hh-duke", "Duke Blue Devils")
	seedTeamAlias(t, db, ctx, "test-hh-unc", "North Carolina Tar Heels")

	home, away := 38, 31
	snap := &models.GameSnapshot{
		GameID:     gameID,
		Date:       "20260115",
		SeasonYear: 2026,
		Status:     models.StatusHalftime,
		HomeName:   "Duke Blue Devils",
		AwayName:   "North Carolina Tar Heels",
		HomeScore:  &home,
		AwayScore:  &away,
	}

	fg, fg3 := 0.50, 0.40
	fgA, fg3A := 0.42, 0.35
	stats := &fakeStatsFetcher{stats: &models.HalfStats{
		Home: models.TeamHalfStats{FGPct: &fg, FG3Pct: &fg3},
		Away: models.TeamHalfStats{FGPct: &fgA, FG3Pct: &fg3A},
	}}
	alerts := &fakeAlerter{}

	h := NewHalftimeHandler(testConfig(), db, stats, alerts)
	require.NoError(t, h.Handle(ctx, snap))
	require.NoError(t, h.Handle(ctx, snap), "Repeat call must be a silent no-op")

	assert.Equal(t, 1, countRows(t, db, ctx, "halftime_events", gameID),
		"Exactly one halftime event per game")
	assert.Equal(t, 1, countRows(t, db, ctx, "predictions", gameID),
		"Exactly one prediction per game")
	assert.Equal(t, 1, stats.calls, "Stats fetched only on first processing")
	assert.Len(t, alerts.alerts, 1, "Alert dispatched only on first processing")

	pred, err := db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, pred)
	assert.InDelta(t, 0.8188, pred.HomeWinProb, 1e-9, "margin 7 reads the 6..10 baseline bucket")
	assert.False(t, pred.IsResolved())
}

func TestFinalResolver_SecondCallIsNoOp(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()

	const gameID = "test-handler-3001"
	cleanupHandlerGame(t, db, gameID)
	require.NoError(t, db.Seasons.GetOrCreate(ctx, 2026))

	now := time.Now().UTC()
	home, away := 80, 70
	snap := &models.GameSnapshot{
		GameID:     gameID,
		Date:       "20260115",
		SeasonYear: 2026,
		Status:     models.StatusFinal,
		HomeName:   "Duke Blue Devils",
		AwayName:   "North Carolina Tar Heels",
		HomeScore:  &home,
		AwayScore:  &away,
	}
	require.NoError(t, db.Games.Upsert(ctx, snap.ToGame(now)))

	require.NoError(t, db.Predictions.Create(ctx, &models.Prediction{
		GameID:      gameID,
		SeasonYear:  2026,
		HomeWinProb: 0.6862,
		Confidence:  0.25,
		Bucket:      models.BucketHigh,
		Explanation: json.RawMessage(`{}`),
		CreatedAt:   now,
	}))

	r := NewFinalResolver(testConfig(), db)
	require.NoError(t, r.Handle(ctx, snap))

	first, err := db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	require.True(t, first.IsResolved())
	assert.Equal(t, int32(1), first.HomeWin.Int32)
	assert.Equal(t, int32(1), first.Correct.Int32, "0.6862 home prob and a home win grades correct")

	require.NoError(t, r.Handle(ctx, snap), "Repeat call must be a silent no-op")

	second, err := db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	assert.True(t, second.ResolvedAt.Time.Equal(first.ResolvedAt.Time),
		"Resolution must not be rewritten on a repeat final")
	assert.Equal(t, 1, countRows(t, db, ctx, "predictions", gameID))
}
