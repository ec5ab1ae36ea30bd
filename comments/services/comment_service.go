// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofrs/uuid"

	"github.com/MaksimBoltov/comments/comments/dates"
	commentsErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/export"
	"github.com/MaksimBoltov/comments/comments/identifier"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/pagination"
	commentRepository "github.com/MaksimBoltov/comments/comments/repository"
	"github.com/MaksimBoltov/comments/comments/tree"
	"github.com/MaksimBoltov/comments/comments/validation"
	"github.com/MaksimBoltov/comments/internal/pkg/log"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
)

// commentService implements the CommentService interface
type commentService struct {
	commentRepo commentRepository.CommentRepository
	resolver    *identifier.Resolver
	validator   *validation.CommentValidator
	walker      *tree.Walker
	firstLevel  pagination.Policy
	history     pagination.Policy
	now         func() time.Time
}

// NewCommentService wires the comment service with its dependencies.
func NewCommentService(
	commentRepo commentRepository.CommentRepository,
	userRepo commentRepository.UserRepository,
	entityTypeRepo commentRepository.EntityTypeRepository,
	cfg *platformconfig.Config,
) CommentService {
	resolver := identifier.NewResolver(userRepo)
	return &commentService{
		commentRepo: commentRepo,
		resolver:    resolver,
		validator:   validation.NewCommentValidator(resolver, entityTypeRepo),
		walker:      tree.NewWalker(commentRepo, cfg.Thread.CommentTypeName, cfg.Thread.MaxDepth),
		firstLevel:  pagination.NewPolicy(cfg.Pagination.FirstLevelPageSize, cfg.Pagination.MaxPageSize),
		history:     pagination.NewPolicy(cfg.Pagination.HistoryPageSize, cfg.Pagination.MaxPageSize),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CreateComment validates the payload and stores the comment it describes,
// reusing the author and type the validator resolved
func (s *commentService) CreateComment(ctx context.Context, payload map[string]interface{}) (*models.Comment, error) {
	draft, err := s.validator.Validate(ctx, payload)
	if err != nil {
		return nil, err
	}

	commentID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate comment ID: %w", err)
	}

	comment := draft.Comment()
	comment.ID = commentID
	comment.CreatedDate = s.now()

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// the author or type vanished between validation and insert
		if errors.Is(err, commentsErrors.ErrUserNotFound) {
			return nil, commentsErrors.AuthorNotFoundError(validation.Stringify(payload[models.FieldAuthor]))
		}
		if errors.Is(err, commentsErrors.ErrEntityTypeNotFound) {
			return nil, commentsErrors.EntityTypeNotFoundError()
		}
		return nil, commentsErrors.WrapDatabaseError(err)
	}

	log.InfoWithContext(ctx, "comment %s created by %s on %s", comment.ID, draft.Author.Nickname, comment.ParentEntity)
	return comment, nil
}

// filteredSource adapts a repository filter to pagination.Source
type filteredSource struct {
	repo   commentRepository.CommentRepository
	filter commentRepository.CommentFilter
}

func (f filteredSource) Count(ctx context.Context) (int64, error) {
	count, err := f.repo.Count(ctx, f.filter)
	if err != nil {
		return 0, commentsErrors.WrapDatabaseError(err)
	}
	return count, nil
}

func (f filteredSource) Fetch(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	comments, err := f.repo.Find(ctx, f.filter, limit, offset)
	if err != nil {
		return nil, commentsErrors.WrapDatabaseError(err)
	}
	return comments, nil
}

// ListFirstLevel pages through the comments attached directly to entity
func (s *commentService) ListFirstLevel(ctx context.Context, entity string, page PageRequest) (*models.CommentsPage, error) {
	entityID, ok := identifier.ParseUUID(entity)
	if !ok {
		return nil, commentsErrors.NotUUIDError()
	}

	src := filteredSource{repo: s.commentRepo, filter: commentRepository.CommentFilter{ParentEntity: &entityID}}
	return s.firstLevel.Paginate(ctx, src, page.Params, page.URL)
}

// ListUserHistory pages through a user's comments, newest first
func (s *commentService) ListUserHistory(ctx context.Context, user string, page PageRequest) (*models.CommentsPage, error) {
	author, err := s.resolveUser(ctx, user)
	if err != nil {
		return nil, err
	}

	filter := commentRepository.CommentFilter{UserID: &author.ID, Sort: commentRepository.SortNewestFirst}
	return s.history.Paginate(ctx, filteredSource{repo: s.commentRepo, filter: filter}, page.Params, page.URL)
}

// ExportUserHistory writes a user's comments in the range as CSV
func (s *commentService) ExportUserHistory(ctx context.Context, user string, dateRange DateRange, w io.Writer) error {
	author, err := s.resolveUser(ctx, user)
	if err != nil {
		return err
	}

	filter := commentRepository.CommentFilter{UserID: &author.ID, Sort: commentRepository.SortNewestFirst}
	if err := applyDateRange(&filter, dateRange); err != nil {
		return err
	}

	return s.export(ctx, filter, export.Options{}, w)
}

// ExportEntityHistory writes the comments attached to entity in the range
// as CSV. The parent_entity column repeats the entity exactly as given.
func (s *commentService) ExportEntityHistory(ctx context.Context, entity string, dateRange DateRange, w io.Writer) error {
	entityID, ok := identifier.ParseUUID(entity)
	if !ok {
		return commentsErrors.NotUUIDError()
	}

	filter := commentRepository.CommentFilter{ParentEntity: &entityID}
	if err := applyDateRange(&filter, dateRange); err != nil {
		return err
	}

	return s.export(ctx, filter, export.Options{ParentEntity: entity}, w)
}

func (s *commentService) export(ctx context.Context, filter commentRepository.CommentFilter, opts export.Options, w io.Writer) error {
	comments, err := s.commentRepo.Find(ctx, filter, 0, 0)
	if err != nil {
		return commentsErrors.WrapDatabaseError(err)
	}

	log.DebugWithContext(ctx, "exporting %d comments", len(comments))
	return export.WriteComments(w, comments, opts)
}

// GetThread returns the root comment with all of its replies nested.
// An absent root parameter is the caller's to report.
func (s *commentService) GetThread(ctx context.Context, root string) (*models.CommentTreeNode, error) {
	rootID, ok := identifier.ParseUUID(root)
	if !ok {
		return nil, commentsErrors.RootNotUUIDError()
	}

	comment, err := s.commentRepo.FindByID(ctx, rootID)
	if err != nil {
		if errors.Is(err, commentsErrors.ErrCommentNotFound) {
			return nil, commentsErrors.RootNotFoundError(root)
		}
		return nil, commentsErrors.WrapDatabaseError(err)
	}

	node, err := s.walker.Thread(ctx, comment)
	if err != nil {
		if errors.Is(err, commentsErrors.ErrCyclicThread) || errors.Is(err, commentsErrors.ErrThreadTooDeep) {
			log.WarnWithContext(ctx, "thread under %s is malformed: %v", root, err)
			return nil, commentsErrors.InvalidThreadError(err)
		}
		return nil, commentsErrors.WrapDatabaseError(err)
	}
	return node, nil
}

// Health pings the comment store
func (s *commentService) Health(ctx context.Context) error {
	if err := s.commentRepo.Ping(ctx); err != nil {
		return commentsErrors.WrapDatabaseError(err)
	}
	return nil
}

// resolveUser turns a history or export user parameter into a user
func (s *commentService) resolveUser(ctx context.Context, value string) (*models.User, error) {
	if value == "" {
		return nil, commentsErrors.UserNotFoundError()
	}
	user, err := s.resolver.ResolveUser(ctx, value)
	if err != nil {
		if errors.Is(err, commentsErrors.ErrUserNotFound) {
			return nil, commentsErrors.UserNotFoundError()
		}
		return nil, commentsErrors.WrapDatabaseError(err)
	}
	return user, nil
}

func applyDateRange(filter *commentRepository.CommentFilter, dateRange DateRange) error {
	start, err := dates.ParseOptional(dateRange.Start, dateRange.HasStart)
	if err != nil {
		return commentsErrors.InvalidDateError(err)
	}
	end, err := dates.ParseOptional(dateRange.End, dateRange.HasEnd)
	if err != nil {
		return commentsErrors.InvalidDateError(err)
	}
	filter.CreatedAfter = start
	filter.CreatedBefore = end
	return nil
}
