// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/gofrs/uuid"
)

// memoryComment mirrors a comments row: references are kept by id and
// joined on read, so a missing author or type renders as nil
type memoryComment struct {
	id           uuid.UUID
	createdDate  time.Time
	userID       *uuid.UUID
	text         string
	parentEntity uuid.UUID
	typeID       *int64
}

// MemoryStore keeps users, entity types and comments in process memory.
// Natural order is insertion order.
type MemoryStore struct {
	mutex       sync.RWMutex
	users       map[uuid.UUID]models.User
	entityTypes map[int64]models.EntityType
	nextTypeID  int64
	comments    []memoryComment
	commentIdx  map[uuid.UUID]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uuid.UUID]models.User),
		entityTypes: make(map[int64]models.EntityType),
		nextTypeID:  1,
		commentIdx:  make(map[uuid.UUID]int),
	}
}

// Comments returns the comment repository view of the store
func (s *MemoryStore) Comments() CommentRepository { return memoryCommentRepository{s} }

// Users returns the user repository view of the store
func (s *MemoryStore) Users() UserRepository { return memoryUserRepository{s} }

// EntityTypes returns the entity type repository view of the store
func (s *MemoryStore) EntityTypes() EntityTypeRepository { return memoryEntityTypeRepository{s} }

// join must be called with the read lock held
func (s *MemoryStore) join(row memoryComment) *models.Comment {
	comment := &models.Comment{
		ID:           row.id,
		CreatedDate:  row.createdDate,
		Text:         row.text,
		ParentEntity: row.parentEntity,
	}
	if row.userID != nil {
		if user, ok := s.users[*row.userID]; ok {
			comment.User = &user
		}
	}
	if row.typeID != nil {
		if entityType, ok := s.entityTypes[*row.typeID]; ok {
			comment.ParentEntityType = &entityType
		}
	}
	return comment
}

type memoryCommentRepository struct {
	store *MemoryStore
}

func (r memoryCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if comment.ID == uuid.Nil {
		comment.ID = uuid.Must(uuid.NewV4())
	}
	if comment.CreatedDate.IsZero() {
		comment.CreatedDate = time.Now().UTC()
	}
	if _, exists := s.commentIdx[comment.ID]; exists {
		return nil
	}

	userID := comment.UserID()
	if userID != nil {
		if _, ok := s.users[*userID]; !ok {
			return commentErrors.ErrUserNotFound
		}
	}
	typeID := comment.ParentEntityTypeID()
	if typeID != nil {
		if _, ok := s.entityTypes[*typeID]; !ok {
			return commentErrors.ErrEntityTypeNotFound
		}
	}

	s.commentIdx[comment.ID] = len(s.comments)
	s.comments = append(s.comments, memoryComment{
		id:           comment.ID,
		createdDate:  comment.CreatedDate.UTC(),
		userID:       userID,
		text:         comment.Text,
		parentEntity: comment.ParentEntity,
		typeID:       typeID,
	})
	return nil
}

func (r memoryCommentRepository) FindByID(ctx context.Context, commentID uuid.UUID) (*models.Comment, error) {
	s := r.store
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	idx, ok := s.commentIdx[commentID]
	if !ok {
		return nil, commentErrors.ErrCommentNotFound
	}
	return s.join(s.comments[idx]), nil
}

// matching must be called with the read lock held
func (r memoryCommentRepository) matching(filter CommentFilter) []*models.Comment {
	var result []*models.Comment
	for _, row := range r.store.comments {
		comment := r.store.join(row)
		if filter.matches(comment) {
			result = append(result, comment)
		}
	}
	if filter.Sort == SortNewestFirst {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].CreatedDate.After(result[j].CreatedDate)
		})
	}
	return result
}

func (r memoryCommentRepository) Find(ctx context.Context, filter CommentFilter, limit, offset int) ([]*models.Comment, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	result := r.matching(filter)
	if offset >= len(result) {
		return []*models.Comment{}, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r memoryCommentRepository) Count(ctx context.Context, filter CommentFilter) (int64, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	return int64(len(r.matching(filter))), nil
}

func (r memoryCommentRepository) FindChildren(ctx context.Context, commentID uuid.UUID, threadType string) ([]*models.Comment, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	var children []*models.Comment
	for _, row := range r.store.comments {
		if row.parentEntity != commentID {
			continue
		}
		comment := r.store.join(row)
		if comment.Parent(threadType).IsThreadEdge() {
			children = append(children, comment)
		}
	}
	return children, nil
}

func (r memoryCommentRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memoryUserRepository struct {
	store *MemoryStore
}

func (r memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.Must(uuid.NewV4())
	}
	if _, exists := s.users[user.ID]; exists {
		return nil
	}
	for _, existing := range s.users {
		if existing.Nickname == user.Nickname {
			return fmt.Errorf("failed to create user: nickname %q is taken", user.Nickname)
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (r memoryUserRepository) FindByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	user, ok := r.store.users[userID]
	if !ok {
		return nil, commentErrors.ErrUserNotFound
	}
	return &user, nil
}

func (r memoryUserRepository) FindByNickname(ctx context.Context, nickname string) (*models.User, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	for _, user := range r.store.users {
		if user.Nickname == nickname {
			found := user
			return &found, nil
		}
	}
	return nil, commentErrors.ErrUserNotFound
}

type memoryEntityTypeRepository struct {
	store *MemoryStore
}

func (r memoryEntityTypeRepository) Create(ctx context.Context, entityType *models.EntityType) error {
	s := r.store
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entityType.ID == 0 {
		entityType.ID = s.nextTypeID
	}
	if _, exists := s.entityTypes[entityType.ID]; exists {
		return nil
	}
	s.entityTypes[entityType.ID] = *entityType
	if entityType.ID >= s.nextTypeID {
		s.nextTypeID = entityType.ID + 1
	}
	return nil
}

func (r memoryEntityTypeRepository) FindByID(ctx context.Context, id int64) (*models.EntityType, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	entityType, ok := r.store.entityTypes[id]
	if !ok {
		return nil, commentErrors.ErrEntityTypeNotFound
	}
	return &entityType, nil
}

func (r memoryEntityTypeRepository) FindByName(ctx context.Context, name string) (*models.EntityType, error) {
	r.store.mutex.RLock()
	defer r.store.mutex.RUnlock()

	var found *models.EntityType
	for id, entityType := range r.store.entityTypes {
		if entityType.Name != name {
			continue
		}
		if found == nil || id < found.ID {
			match := entityType
			found = &match
		}
	}
	if found == nil {
		return nil, commentErrors.ErrEntityTypeNotFound
	}
	return found, nil
}
