// Command aliasadmin manages the team alias table. Alias resolution fails
// closed in the live pipeline, so every feed display name must be mapped here
// before a prediction can be made for that team.
package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/nknauf/ncaa-halftime-predictor/internal/config"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		listTeams = flag.Bool("list", false, "list canonical teams and exit")
		source    = flag.String("source", "espn", "alias source feed")
		alias     = flag.String("alias", "", "feed display name to map")
		slug      = flag.String("slug", "", "canonical team slug the alias maps to")
		mapping   = flag.String("mapping", "manual", "provenance of the mapping")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	if *listTeams {
		teams, err := db.Teams.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list teams")
		}
		for _, t := range teams {
			fmt.Printf("%-8d %-30s %s\n", t.ID, t.Slug, t.Name)
		}
		return
	}

	if *alias == "" || *slug == "" {
		flag.Usage()
		log.Fatal().Msg("Both -alias and -slug are required")
	}

	team, err := db.Teams.GetBySlug(ctx, *slug)
	if err != nil {
		log.Fatal().Err(err).Str("slug", *slug).Msg("Team not found")
	}

	normalized := repository.NormalizeAlias(*alias)
	err = db.Teams.UpsertAlias(ctx, &models.TeamAlias{
		AliasSource:   *source,
		AliasName:     normalized,
		TeamID:        team.ID,
		MappingSource: *mapping,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to upsert alias")
	}

	log.Info().
		Str("source", *source).
		Str("alias", normalized).
		Str("slug", team.Slug).
		Int("team_id", team.ID).
		Msg("Alias mapped")
}
