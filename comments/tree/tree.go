// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package tree expands a comment into its nested reply thread.
package tree

import (
	"context"
	"fmt"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/repository"
	"github.com/gofrs/uuid"
)

// DefaultMaxDepth bounds the walk when no depth is configured
const DefaultMaxDepth = 100

// Walker follows thread edges downward from a root comment, one query
// per node, depth first
type Walker struct {
	comments   repository.CommentRepository
	threadType string
	maxDepth   int
}

// NewWalker creates a Walker. threadType names the entity type that marks
// a parent as another comment.
func NewWalker(comments repository.CommentRepository, threadType string, maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Walker{comments: comments, threadType: threadType, maxDepth: maxDepth}
}

// Thread returns root rendered with every descendant
func (w *Walker) Thread(ctx context.Context, root *models.Comment) (*models.CommentTreeNode, error) {
	visited := map[uuid.UUID]bool{root.ID: true}
	children, err := w.descend(ctx, root.ID, 1, visited)
	if err != nil {
		return nil, err
	}
	return &models.CommentTreeNode{
		CommentResponse: models.NewCommentResponse(root),
		Child:           children,
	}, nil
}

// Descendants returns the replies under rootID, each with its own replies
func (w *Walker) Descendants(ctx context.Context, rootID uuid.UUID) ([]*models.CommentTreeNode, error) {
	return w.descend(ctx, rootID, 1, map[uuid.UUID]bool{rootID: true})
}

func (w *Walker) descend(ctx context.Context, parentID uuid.UUID, depth int, visited map[uuid.UUID]bool) ([]*models.CommentTreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children, err := w.comments.FindChildren(ctx, parentID, w.threadType)
	if err != nil {
		return nil, err
	}
	if len(children) > 0 && depth > w.maxDepth {
		return nil, fmt.Errorf("%w: deeper than %d below %s", commentErrors.ErrThreadTooDeep, w.maxDepth, parentID)
	}

	nodes := make([]*models.CommentTreeNode, 0, len(children))
	for _, child := range children {
		if visited[child.ID] {
			return nil, fmt.Errorf("%w: %s reached twice", commentErrors.ErrCyclicThread, child.ID)
		}
		visited[child.ID] = true

		grandChildren, err := w.descend(ctx, child.ID, depth+1, visited)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, &models.CommentTreeNode{
			CommentResponse: models.NewCommentResponse(child),
			Child:           grandChildren,
		})
	}
	return nodes, nil
}
