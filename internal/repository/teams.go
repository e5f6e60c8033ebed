package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrUnmappedTeam is returned when a feed display name has no alias row.
// Ambiguity is a data-entry problem to fix in the alias table, not a
// runtime heuristic; there is deliberately no fuzzy matching.
var ErrUnmappedTeam = errors.New("unmapped team name")

// TeamRepository handles team and alias database operations
type TeamRepository struct {
	db *Database
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// NormalizeAlias canonicalizes a display name for alias storage and lookup:
// lowercase, punctuation stripped, whitespace collapsed
func NormalizeAlias(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonWordRe.ReplaceAllString(name, "")
	name = whitespaceRe.ReplaceAllString(name, " ")
	return name
}

// Upsert inserts or updates a team
func (r *TeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (slug, name, conference)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET
			name = EXCLUDED.name,
			conference = EXCLUDED.conference,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		team.Slug, team.Name, team.Conference,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}

// GetBySlug retrieves a team by its external-source slug
func (r *TeamRepository) GetBySlug(ctx context.Context, slug string) (*models.Team, error) {
	query := `
		SELECT id, slug, name, conference, created_at, updated_at
		FROM teams
		WHERE slug = $1
	`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, slug).Scan(
		&team.ID, &team.Slug, &team.Name, &team.Conference,
		&team.CreatedAt, &team.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("team not found: slug=%s", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &team, nil
}

// ResolveAlias maps a feed display name to an internal team id via the
// alias table. Exact match on the normalized name only; an absent row
// returns ErrUnmappedTeam so the caller can decide skip-or-halt.
func (r *TeamRepository) ResolveAlias(ctx context.Context, aliasSource, displayName string) (int, error) {
	query := `
		SELECT team_id FROM team_aliases
		WHERE alias_source = $1 AND alias_name = $2
	`

	var teamID int
	err := r.db.Pool.QueryRow(ctx, query, aliasSource, NormalizeAlias(displayName)).Scan(&teamID)

	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("%w: %q (source=%s)", ErrUnmappedTeam, displayName, aliasSource)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve alias: %w", err)
	}

	return teamID, nil
}

// UpsertAlias inserts or updates an alias mapping
func (r *TeamRepository) UpsertAlias(ctx context.Context, alias *models.TeamAlias) error {
	query := `
		INSERT INTO team_aliases (alias_source, alias_name, team_id, mapping_source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (alias_source, alias_name) DO UPDATE SET
			team_id = EXCLUDED.team_id,
			mapping_source = EXCLUDED.mapping_source,
			updated_at = NOW()
	`

	_, err := r.db.Pool.Exec(ctx, query,
		alias.AliasSource, NormalizeAlias(alias.AliasName), alias.TeamID, alias.MappingSource,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert alias: %w", err)
	}

	log.Debug().
		Str("source", alias.AliasSource).
		Str("alias", alias.AliasName).
		Int("team_id", alias.TeamID).
		Msg("Team alias upserted")

	return nil
}

// List returns all teams ordered by slug
func (r *TeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, slug, name, conference, created_at, updated_at
		FROM teams
		ORDER BY slug
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		err := rows.Scan(
			&team.ID, &team.Slug, &team.Name, &team.Conference,
			&team.CreatedAt, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &team)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}

	return teams, nil
}
