package models

import (
	"database/sql"
	"time"
)

// Team is a canonical team row. Created by offline ingestion; the live
// pipeline only reads it through the alias table.
type Team struct {
	ID         int            `db:"id"`
	Slug       string         `db:"slug"` // external-source identifier for historical data
	Name       string         `db:"name"`
	Conference sql.NullString `db:"conference"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

// TeamAlias maps a (source, normalized name) pair to a team id
type TeamAlias struct {
	AliasSource   string    `db:"alias_source"`
	AliasName     string    `db:"alias_name"`
	TeamID        int       `db:"team_id"`
	MappingSource string    `db:"mapping_source"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Season is a single-year partition row, created on first reference
type Season struct {
	Year      int       `db:"year"`
	CreatedAt time.Time `db:"created_at"`
}

// Subscriber is an SMS alert recipient. MinConfidence, when set, gates
// delivery to predictions at or above that confidence.
type Subscriber struct {
	ID            int             `db:"id"`
	PhoneNumber   string          `db:"phone_number"`
	MinConfidence sql.NullFloat64 `db:"min_confidence"`
	IsActive      bool            `db:"is_active"`
	CreatedAt     time.Time       `db:"created_at"`
}
