// Command seed loads the demo users, entity types and comment thread into
// the configured PostgreSQL database. Running it again changes nothing.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	commentRepository "github.com/MaksimBoltov/comments/comments/repository"
	"github.com/MaksimBoltov/comments/comments/seed"
	"github.com/MaksimBoltov/comments/internal/database/postgres"
	"github.com/MaksimBoltov/comments/internal/pkg/log"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
)

func main() {
	if err := run(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := platformconfig.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load platform config: %w", err)
	}
	log.SetDebug(cfg.Server.Debug)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := postgres.NewClient(ctx, &cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	summary, err := seed.DemoData(ctx,
		commentRepository.NewPostgresUserRepository(client),
		commentRepository.NewPostgresEntityTypeRepository(client),
		commentRepository.NewPostgresCommentRepository(client),
	)
	if err != nil {
		return err
	}

	log.Info("demo data loaded: %d users, %d entity types, %d comments", summary.Users, summary.EntityTypes, summary.Comments)
	return nil
}
