package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAlias(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Duke Blue Devils", "duke blue devils"},
		{"St. John's Red Storm", "st johns red storm"},
		{"  Texas A&M   Aggies ", "texas am aggies"},
		{"Miami (FL) Hurricanes", "miami fl hurricanes"},
		{"UNC-Wilmington", "uncwilmington"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAlias(tt.in), "input %q", tt.in)
	}
}

func cleanupTeam(t *testing.T, db *Database, slug string) {
	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = db.Pool.Exec(ctx, `DELETE FROM team_aliases WHERE team_id IN (SELECT id FROM teams WHERE slug = $1)`, slug)
		_, _ = db.Pool.Exec(ctx, `DELETE FROM teams WHERE slug = $1`, slug)
	})
}

func TestTeamRepository_Upsert(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	const slug = "test-duke"
	cleanupTeam(t, db, slug)

	team := &models.Team{Slug: slug, Name: "Duke Blue Devils"}
	require.NoError(t, db.Teams.Upsert(ctx, team))
	assert.NotZero(t, team.ID, "Upsert should populate the id")

	firstID := team.ID

	// Re-upserting the same slug keeps the id stable
	team2 := &models.Team{Slug: slug, Name: "Duke"}
	require.NoError(t, db.Teams.Upsert(ctx, team2))
	assert.Equal(t, firstID, team2.ID)

	got, err := db.Teams.GetBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Duke", got.Name)
}

func TestTeamRepository_ResolveAlias(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	const slug = "test-st-johns"
	cleanupTeam(t, db, slug)

	team := &models.Team{Slug: slug, Name: "St. John's"}
	require.NoError(t, db.Teams.Upsert(ctx, team))

	require.NoError(t, db.Teams.UpsertAlias(ctx, &models.TeamAlias{
		AliasSource:   "espn",
		AliasName:     "St. John's Red Storm",
		TeamID:        team.ID,
		MappingSource: "manual",
	}))

	// Lookup normalizes the incoming display name the same way
	id, err := db.Teams.ResolveAlias(ctx, "espn", "St. John's Red Storm")
	require.NoError(t, err)
	assert.Equal(t, team.ID, id)

	id, err = db.Teams.ResolveAlias(ctx, "espn", "  st johns  red storm ")
	require.NoError(t, err)
	assert.Equal(t, team.ID, id)

	// No fuzzy matching: an unseen name fails closed
	_, err = db.Teams.ResolveAlias(ctx, "espn", "St Johns University Red Storm")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmappedTeam))

	// Aliases are scoped per source
	_, err = db.Teams.ResolveAlias(ctx, "other-feed", "St. John's Red Storm")
	assert.True(t, errors.Is(err, ErrUnmappedTeam))
}
