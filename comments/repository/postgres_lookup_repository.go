// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/internal/database/postgres"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
)

// postgresUserRepository implements UserRepository
type postgresUserRepository struct {
	client *postgres.Client
}

// NewPostgresUserRepository creates a new PostgreSQL repository for users
func NewPostgresUserRepository(client *postgres.Client) UserRepository {
	return &postgresUserRepository{client: client}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV4())
	}

	query := `
		INSERT INTO users (uuid_user, nickname, firstname)
		VALUES (:uuid_user, :nickname, :firstname)
		ON CONFLICT (uuid_user) DO NOTHING`

	if _, err := sqlx.NamedExecContext(ctx, r.client.DB(), query, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, `SELECT uuid_user, nickname, firstname FROM users WHERE uuid_user = $1`, userID)
}

func (r *postgresUserRepository) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return r.findOne(ctx, `SELECT uuid_user, nickname, firstname FROM users WHERE nickname = $1`, nickname)
}

func (r *postgresUserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := sqlx.GetContext(ctx, r.client.DB(), &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commentErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// postgresEntityTypeRepository implements EntityTypeRepository
type postgresEntityTypeRepository struct {
	client *postgres.Client
}

// NewPostgresEntityTypeRepository creates a new PostgreSQL repository for entity types
func NewPostgresEntityTypeRepository(client *postgres.Client) EntityTypeRepository {
	return &postgresEntityTypeRepository{client: client}
}

func (r *postgresEntityTypeRepository) Create(ctx context.Context, entityType *models.EntityType) error {
	db := r.client.DB()

	if entityType.ID == 0 {
		query := `INSERT INTO entity_types (name, description) VALUES ($1, $2) RETURNING id`
		if err := sqlx.GetContext(ctx, db, &entityType.ID, query, entityType.Name, entityType.Description); err != nil {
			return fmt.Errorf("failed to create entity type: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO entity_types (id, name, description)
		VALUES (:id, :name, :description)
		ON CONFLICT (id) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, db, query, entityType); err != nil {
		return fmt.Errorf("failed to create entity type: %w", err)
	}

	// Explicit ids bypass the sequence; move it past them
	syncSequence := `SELECT setval(pg_get_serial_sequence('entity_types', 'id'), (SELECT MAX(id) FROM entity_types))`
	if _, err := db.ExecContext(ctx, syncSequence); err != nil {
		return fmt.Errorf("failed to sync entity type sequence: %w", err)
	}
	return nil
}

func (r *postgresEntityTypeRepository) FindByID(ctx context.Context, id int64) (*models.EntityType, error) {
	return r.findOne(ctx, `SELECT id, name, description FROM entity_types WHERE id = $1`, id)
}

func (r *postgresEntityTypeRepository) FindByName(ctx context.Context, name string) (*models.EntityType, error) {
	return r.findOne(ctx, `SELECT id, name, description FROM entity_types WHERE name = $1 ORDER BY id LIMIT 1`, name)
}

func (r *postgresEntityTypeRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.EntityType, error) {
	var entityType models.EntityType
	if err := sqlx.GetContext(ctx, r.client.DB(), &entityType, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commentErrors.ErrEntityTypeNotFound
		}
		return nil, fmt.Errorf("failed to find entity type: %w", err)
	}
	return &entityType, nil
}
