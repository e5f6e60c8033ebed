package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// HalftimeEvent is the one-row-per-game capture of a halftime boundary.
// Its existence is the idempotency guard against re-processing halftime
// for the same game.
type HalftimeEvent struct {
	GameID     string `db:"game_id"`
	Date       string `db:"date"`
	SeasonYear int    `db:"season_year"`

	HomeHalftime int `db:"home_halftime"`
	AwayHalftime int `db:"away_halftime"`

	// Resolved internal team ids, null until the alias lookup succeeds
	HomeTeamID  sql.NullInt32  `db:"home_team_id"`
	AwayTeamID  sql.NullInt32  `db:"away_team_id"`
	AliasSource sql.NullString `db:"alias_source"`

	// Raw first-half box-score snapshot, null when the summary fetch failed
	StatsJSON json.RawMessage `db:"halftime_stats"`

	CapturedAt time.Time `db:"captured_at"`
}
