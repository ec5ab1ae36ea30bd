// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"time"

	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/gofrs/uuid"
)

// SortOrder selects the ordering of a comment query
type SortOrder int

const (
	// SortNatural keeps the store's own order
	SortNatural SortOrder = iota
	// SortNewestFirst orders by created_date descending
	SortNewestFirst
)

// CommentFilter represents filtering criteria for querying comments
type CommentFilter struct {
	UserID       *uuid.UUID
	ParentEntity *uuid.UUID
	// Both bounds are inclusive
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Sort          SortOrder
}

// matches reports whether c passes the filter; used by the in-memory store
func (f CommentFilter) matches(c *models.Comment) bool {
	if f.UserID != nil && (c.User == nil || c.User.ID != *f.UserID) {
		return false
	}
	if f.ParentEntity != nil && c.ParentEntity != *f.ParentEntity {
		return false
	}
	if f.CreatedAfter != nil && c.CreatedDate.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && c.CreatedDate.After(*f.CreatedBefore) {
		return false
	}
	return true
}

// CommentRepository defines the interface for comment-specific database operations.
// Returned comments carry their author and parent type already joined.
type CommentRepository interface {
	// Create inserts a new comment, stamping CreatedDate when it is zero
	Create(ctx context.Context, comment *models.Comment) error

	// FindByID retrieves a comment by its ID
	FindByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error)

	// Find retrieves comments matching the filter. A limit <= 0 returns every match.
	Find(ctx context.Context, filter CommentFilter, limit, offset int) ([]*models.Comment, error)

	// Count returns the number of comments matching the filter criteria
	Count(ctx context.Context, filter CommentFilter) (int64, error)

	// FindChildren returns the comments whose parent is commentID and whose
	// parent type is named threadType, in natural order
	FindChildren(ctx context.Context, commentID uuid.UUID, threadType string) ([]*models.Comment, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error
}

// UserRepository looks up comment authors
type UserRepository interface {
	// Create inserts a user; an existing id is left untouched
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindByNickname(ctx context.Context, nickname string) (*models.User, error)
}

// EntityTypeRepository looks up parent entity types
type EntityTypeRepository interface {
	// Create inserts a type. A zero ID is assigned by the store; an existing id is left untouched.
	Create(ctx context.Context, entityType *models.EntityType) error
	FindByID(ctx context.Context, id int64) (*models.EntityType, error)
	// FindByName returns the type with the lowest id among those named name
	FindByName(ctx context.Context, name string) (*models.EntityType, error)
}
