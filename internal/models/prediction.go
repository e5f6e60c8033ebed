package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Confidence bucket labels
const (
	BucketHigh   = "HIGH"
	BucketMedium = "MEDIUM"
	BucketLow    = "LOW"
)

// Explanation sources: whether first-half stats contributed to the score
const (
	SourceBaselineStats = "baseline+stats"
	SourceBaselineOnly  = "baseline_only"
)

// Prediction is the one-row-per-game halftime estimate. Resolution fields
// are all-null until the final resolver grades the prediction; ResolvedAt
// being null is the guard against re-grading.
type Prediction struct {
	GameID     string `db:"game_id"`
	SeasonYear int    `db:"season_year"`

	HomeWinProb     float64 `db:"predicted_home_win_prob"`
	PredictedMargin float64 `db:"predicted_margin"`
	Confidence      float64 `db:"confidence"`
	Bucket          string  `db:"confidence_bucket"`

	Explanation json.RawMessage `db:"explanation"`
	CreatedAt   time.Time       `db:"created_at"`

	// Resolution (set together once the game goes final)
	FinalHomeScore sql.NullInt32  `db:"final_home_score"`
	FinalAwayScore sql.NullInt32  `db:"final_away_score"`
	FinalMargin    sql.NullInt32  `db:"final_margin"`
	HomeWin        sql.NullInt32  `db:"home_win"`
	Correct        sql.NullInt32  `db:"prediction_correct"`
	ResolvedBucket sql.NullString `db:"resolved_bucket"`
	ResolvedAt     sql.NullTime   `db:"resolved_at"`
}

// IsResolved reports whether the prediction has already been graded
func (p *Prediction) IsResolved() bool {
	return p.ResolvedAt.Valid
}

// Explanation is the structured rationale stored alongside a prediction.
// Source tags whether stats were available (baseline+stats) or the score
// degraded to the margin-only baseline (baseline_only).
type Explanation struct {
	Source         string  `json:"source"`
	HalftimeMargin int     `json:"halftime_margin"`
	BaselineProb   float64 `json:"baseline_prob"`
	StatsAvailable bool    `json:"stats_available"`
	HomeTeam       string  `json:"home_team"`
	AwayTeam       string  `json:"away_team"`

	// Present only when stats were available
	HQS             *float64 `json:"hqs,omitempty"`
	ShootingExtreme *bool    `json:"shooting_extreme,omitempty"`
}
