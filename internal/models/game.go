package models

import (
	"database/sql"
	"time"
)

// GameSnapshot is the canonical in-memory view of one scoreboard event,
// normalized from the raw feed payload. Scores are nil until the feed
// reports them.
type GameSnapshot struct {
	GameID     string
	Date       string // YYYYMMDD sports day, filled by the poller
	SeasonYear int    // filled by the poller
	StartTime  time.Time
	Status     GameStatus

	HomeName string
	AwayName string

	HomeFeedTeamID string
	AwayFeedTeamID string

	HomeScore *int
	AwayScore *int
}

// HasScores reports whether both sides have a reported score
func (s *GameSnapshot) HasScores() bool {
	return s.HomeScore != nil && s.AwayScore != nil
}

// Margin returns home score minus away score. Only meaningful when
// HasScores is true.
func (s *GameSnapshot) Margin() int {
	return *s.HomeScore - *s.AwayScore
}

// Game is the persisted tracked-game row, one per upstream game id.
// The status column is the input to boundary detection on the next cycle.
type Game struct {
	GameID     string         `db:"game_id"`
	Date       string         `db:"date"`
	SeasonYear int            `db:"season_year"`
	StartTime  sql.NullTime   `db:"start_time"`
	Status     string         `db:"status"`
	HomeName   string         `db:"home_name"`
	AwayName   string         `db:"away_name"`
	HomeFeed   sql.NullString `db:"home_feed_team_id"`
	AwayFeed   sql.NullString `db:"away_feed_team_id"`
	HomeScore  sql.NullInt32  `db:"home_score"`
	AwayScore  sql.NullInt32  `db:"away_score"`
	LastSeen   time.Time      `db:"last_seen_at"`
}

// ToGame converts a feed snapshot into the persisted row form
func (s *GameSnapshot) ToGame(now time.Time) *Game {
	g := &Game{
		GameID:     s.GameID,
		Date:       s.Date,
		SeasonYear: s.SeasonYear,
		Status:     string(s.Status),
		HomeName:   s.HomeName,
		AwayName:   s.AwayName,
		LastSeen:   now,
	}

	if !s.StartTime.IsZero() {
		g.StartTime = sql.NullTime{Time: s.StartTime, Valid: true}
	}
	if s.HomeFeedTeamID != "" {
		g.HomeFeed = sql.NullString{String: s.HomeFeedTeamID, Valid: true}
	}
	if s.AwayFeedTeamID != "" {
		g.AwayFeed = sql.NullString{String: s.AwayFeedTeamID, Valid: true}
	}
	if s.HomeScore != nil {
		g.HomeScore = sql.NullInt32{Int32: int32(*s.HomeScore), Valid: true}
	}
	if s.AwayScore != nil {
		g.AwayScore = sql.NullInt32{Int32: int32(*s.AwayScore), Valid: true}
	}

	return g
}
