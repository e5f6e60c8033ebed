package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupPrediction(t *testing.T, db *Database, gameID string) {
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM predictions WHERE game_id = $1`, gameID)
	})
}

func testPrediction(gameID string) *models.Prediction {
	explanation, _ := json.Marshal(models.Explanation{
		Source:         models.SourceBaselineStats,
		HalftimeMargin: 7,
		BaselineProb:   0.8188,
		StatsAvailable: true,
		HomeTeam:       "Duke Blue Devils",
		AwayTeam:       "North Carolina Tar Heels",
	})

	return &models.Prediction{
		GameID:      gameID,
		SeasonYear:  2026,
		HomeWinProb: 0.8188,
		Confidence:  0.3337,
		Bucket:      models.BucketHigh,
		Explanation: explanation,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestPredictionRepository_CreateAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	const gameID = "test-pred-3000"
	cleanupPrediction(t, db, gameID)
	require.NoError(t, db.Seasons.GetOrCreate(ctx, 2026))

	// Absent prediction reads as nil, not an error
	got, err := db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Predictions.Create(ctx, testPrediction(gameID)))

	got, err = db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0.8188, got.HomeWinProb)
	assert.Equal(t, models.BucketHigh, got.Bucket)
	assert.False(t, got.IsResolved())
	assert.Contains(t, string(got.Explanation), "baseline+stats")
}

func TestPredictionRepository_CreateValidation(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	assert.Error(t, db.Predictions.Create(ctx, nil))

	p := testPrediction("test-pred-invalid")
	p.GameID = ""
	assert.Error(t, db.Predictions.Create(ctx, p))

	p = testPrediction("test-pred-invalid")
	p.HomeWinProb = 1.2
	assert.Error(t, db.Predictions.Create(ctx, p))

	p = testPrediction("test-pred-invalid")
	p.Confidence = -0.1
	assert.Error(t, db.Predictions.Create(ctx, p))
}

func TestPredictionRepository_Resolve(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	const gameID = "test-pred-3001"
	cleanupPrediction(t, db, gameID)
	require.NoError(t, db.Seasons.GetOrCreate(ctx, 2026))

	require.NoError(t, db.Predictions.Create(ctx, testPrediction(gameID)))

	resolvedAt := time.Now().UTC()
	require.NoError(t, db.Predictions.Resolve(ctx, gameID, 78, 71, 7, 1, 1, models.BucketHigh, resolvedAt))

	got, err := db.Predictions.GetByGameID(ctx, gameID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsResolved())
	assert.Equal(t, int32(78), got.FinalHomeScore.Int32)
	assert.Equal(t, int32(71), got.FinalAwayScore.Int32)
	assert.Equal(t, int32(7), got.FinalMargin.Int32)
	assert.Equal(t, int32(1), got.HomeWin.Int32)
	assert.Equal(t, int32(1), got.Correct.Int32)
	assert.Equal(t, models.BucketHigh, got.ResolvedBucket.String)

	// Resolving a game with no prediction is an error
	assert.Error(t, db.Predictions.Resolve(ctx, "test-pred-missing", 1, 0, 1, 1, 1, models.BucketLow, resolvedAt))
}
