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
	"strings"
	"time"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/internal/database/postgres"
	"github.com/gofrs/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// commentSelect joins the author and the parent type so a single row
// renders a full comment
const commentSelect = `
	SELECT
		c.uuid_comment, c.created_date, c.text, c.parent_entity,
		u.uuid_user AS user_id, u.nickname, u.firstname,
		et.id AS type_id, et.name AS type_name, et.description AS type_description
	FROM comments c
	LEFT JOIN users u ON u.uuid_user = c.user_id
	LEFT JOIN entity_types et ON et.id = c.parent_entity_type_id`

// commentRow is the flat scan target of commentSelect
type commentRow struct {
	ID              uuid.UUID      `db:"uuid_comment"`
	CreatedDate     time.Time      `db:"created_date"`
	Text            string         `db:"text"`
	ParentEntity    uuid.UUID      `db:"parent_entity"`
	UserID          uuid.NullUUID  `db:"user_id"`
	Nickname        sql.NullString `db:"nickname"`
	Firstname       sql.NullString `db:"firstname"`
	TypeID          sql.NullInt64  `db:"type_id"`
	TypeName        sql.NullString `db:"type_name"`
	TypeDescription sql.NullString `db:"type_description"`
}

func (r commentRow) toModel() *models.Comment {
	comment := &models.Comment{
		ID:           r.ID,
		CreatedDate:  r.CreatedDate.UTC(),
		Text:         r.Text,
		ParentEntity: r.ParentEntity,
	}
	if r.UserID.Valid {
		comment.User = &models.User{
			ID:        r.UserID.UUID,
			Nickname:  r.Nickname.String,
			Firstname: r.Firstname.String,
		}
	}
	if r.TypeID.Valid {
		comment.ParentEntityType = &models.EntityType{
			ID:          r.TypeID.Int64,
			Name:        r.TypeName.String,
			Description: r.TypeDescription.String,
		}
	}
	return comment
}

func rowsToModels(rows []commentRow) []*models.Comment {
	comments := make([]*models.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toModel()
	}
	return comments
}

// postgresCommentRepository implements CommentRepository using raw SQL queries
type postgresCommentRepository struct {
	client *postgres.Client
}

// NewPostgresCommentRepository creates a new PostgreSQL repository for comments
func NewPostgresCommentRepository(client *postgres.Client) CommentRepository {
	return &postgresCommentRepository{client: client}
}

// Create inserts a new comment
func (r *postgresCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.Must(uuid.NewV4())
	}
	if comment.CreatedDate.IsZero() {
		comment.CreatedDate = time.Now().UTC()
	}

	query := `
		INSERT INTO comments (
			uuid_comment, created_date, user_id, text, parent_entity, parent_entity_type_id
		) VALUES (
			:uuid_comment, :created_date, :user_id, :text, :parent_entity, :parent_entity_type_id
		)
		ON CONFLICT (uuid_comment) DO NOTHING`

	insertData := struct {
		ID                 uuid.UUID  `db:"uuid_comment"`
		CreatedDate        time.Time  `db:"created_date"`
		UserID             *uuid.UUID `db:"user_id"`
		Text               string     `db:"text"`
		ParentEntity       uuid.UUID  `db:"parent_entity"`
		ParentEntityTypeID *int64     `db:"parent_entity_type_id"`
	}{
		ID:                 comment.ID,
		CreatedDate:        comment.CreatedDate,
		UserID:             comment.UserID(),
		Text:               comment.Text,
		ParentEntity:       comment.ParentEntity,
		ParentEntityTypeID: comment.ParentEntityTypeID(),
	}

	_, err := sqlx.NamedExecContext(ctx, r.client.DB(), query, insertData)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			if strings.Contains(pgErr.Detail, "user_id") {
				return fmt.Errorf("author does not exist: %w", commentErrors.ErrUserNotFound)
			}
			return fmt.Errorf("parent entity type does not exist: %w", commentErrors.ErrEntityTypeNotFound)
		}
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// FindByID retrieves a comment by its ID
func (r *postgresCommentRepository) FindByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	var row commentRow
	err := sqlx.GetContext(ctx, r.client.DB(), &row, commentSelect+` WHERE c.uuid_comment = $1`, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, commentErrors.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment by ID: %w", err)
	}
	return row.toModel(), nil
}

// buildWhere renders the filter as a WHERE clause with positional args
func buildWhere(filter CommentFilter) (string, []interface{}) {
	clauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.UserID != nil {
		clauses = append(clauses, fmt.Sprintf(`c.user_id = $%d`, argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.ParentEntity != nil {
		clauses = append(clauses, fmt.Sprintf(`c.parent_entity = $%d`, argIndex))
		args = append(args, *filter.ParentEntity)
		argIndex++
	}
	if filter.CreatedAfter != nil {
		clauses = append(clauses, fmt.Sprintf(`c.created_date >= $%d`, argIndex))
		args = append(args, *filter.CreatedAfter)
		argIndex++
	}
	if filter.CreatedBefore != nil {
		clauses = append(clauses, fmt.Sprintf(`c.created_date <= $%d`, argIndex))
		args = append(args, *filter.CreatedBefore)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderBy maps a sort order onto SQL. Natural order is chronological so
// that offset pagination stays stable between requests.
func orderBy(sort SortOrder) string {
	if sort == SortNewestFirst {
		return ` ORDER BY c.created_date DESC, c.uuid_comment`
	}
	return ` ORDER BY c.created_date ASC, c.uuid_comment`
}

// Find retrieves comments matching the filter criteria with pagination
func (r *postgresCommentRepository) Find(ctx context.Context, filter CommentFilter, limit, offset int) ([]*models.Comment, error) {
	where, args := buildWhere(filter)
	query := commentSelect + where + orderBy(filter.Sort)

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	var rows []commentRow
	if err := sqlx.SelectContext(ctx, r.client.DB(), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find comments: %w", err)
	}

	return rowsToModels(rows), nil
}

// Count returns the number of comments matching the filter criteria
func (r *postgresCommentRepository) Count(ctx context.Context, filter CommentFilter) (int64, error) {
	where, args := buildWhere(filter)

	var count int64
	err := sqlx.GetContext(ctx, r.client.DB(), &count, `SELECT COUNT(*) FROM comments c`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}

// FindChildren retrieves the direct replies of a comment
func (r *postgresCommentRepository) FindChildren(ctx context.Context, commentID uuid.UUID, threadType string) ([]*models.Comment, error) {
	query := commentSelect + ` WHERE c.parent_entity = $1 AND et.name = $2` + orderBy(SortNatural)

	var rows []commentRow
	if err := sqlx.SelectContext(ctx, r.client.DB(), &rows, query, commentID, threadType); err != nil {
		return nil, fmt.Errorf("failed to find child comments: %w", err)
	}

	return rowsToModels(rows), nil
}

// Ping checks the database connection
func (r *postgresCommentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
