package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/MaksimBoltov/comments/comments"
	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	commentHandlers "github.com/MaksimBoltov/comments/comments/handlers"
	commentRepository "github.com/MaksimBoltov/comments/comments/repository"
	"github.com/MaksimBoltov/comments/comments/seed"
	commentServices "github.com/MaksimBoltov/comments/comments/services"
	"github.com/MaksimBoltov/comments/internal/database/postgres"
	"github.com/MaksimBoltov/comments/internal/middleware/requestid"
	"github.com/MaksimBoltov/comments/internal/pkg/log"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
)

// stores bundles the three repositories over one backend
type stores struct {
	comments    commentRepository.CommentRepository
	users       commentRepository.UserRepository
	entityTypes commentRepository.EntityTypeRepository
	close       func() error
}

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repos, err := openStores(ctx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer repos.close()

	app := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// Handlers render their own envelopes; this only covers fiber's errors
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(commentErrors.NewMessageResponse(e.Code, e.Message))
			}
			log.ErrorWithContext(c.UserContext(), "unhandled error on %s: %v", c.Path(), err)
			return commentErrors.HandleServiceError(c, err)
		},
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.WebDomain,
		AllowHeaders: "Origin, Content-Type, Accept, " + requestid.HeaderRequestID,
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:request_id} ${status} - ${latency} ${method} ${path}\n",
	}))

	service := commentServices.NewCommentService(repos.comments, repos.users, repos.entityTypes, cfg)
	comments.RegisterRoutes(app, &comments.CommentsHandlers{
		CommentHandler: commentHandlers.NewCommentHandler(service),
	}, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown failed: %v", err)
		}
	}()

	log.Info("comments service listening on %s%s (store: %s)", cfg.Server.Address(), cfg.Server.BaseRoute, cfg.Database.Type)
	return app.Listen(cfg.Server.Address())
}

// openStores connects the configured backend, migrating and seeding it as configured
func openStores(ctx context.Context, cfg *platformconfig.Config) (*stores, error) {
	var repos *stores

	switch cfg.Database.Type {
	case platformconfig.DatabaseTypeMemory:
		store := commentRepository.NewMemoryStore()
		repos = &stores{
			comments:    store.Comments(),
			users:       store.Users(),
			entityTypes: store.EntityTypes(),
			close:       func() error { return nil },
		}

	case platformconfig.DatabaseTypePostgreSQL:
		client, err := postgres.NewClient(ctx, &cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := client.Migrate(ctx); err != nil {
				client.Close()
				return nil, err
			}
		}
		repos = &stores{
			comments:    commentRepository.NewPostgresCommentRepository(client),
			users:       commentRepository.NewPostgresUserRepository(client),
			entityTypes: commentRepository.NewPostgresEntityTypeRepository(client),
			close:       client.Close,
		}

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}

	if cfg.Database.SeedDemo {
		summary, err := seed.DemoData(ctx, repos.users, repos.entityTypes, repos.comments)
		if err != nil {
			repos.close()
			return nil, err
		}
		log.Info("demo data loaded: %d users, %d entity types, %d comments", summary.Users, summary.EntityTypes, summary.Comments)
	}

	return repos, nil
}
