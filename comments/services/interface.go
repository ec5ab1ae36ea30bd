// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"io"
	"net/url"

	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/pagination"
)

// DateRange holds the raw start_date/end_date query values. A value that
// is present must parse even when it is empty.
type DateRange struct {
	Start    string
	HasStart bool
	End      string
	HasEnd   bool
}

// PageRequest is what a list endpoint knows about the caller's paging
type PageRequest struct {
	Params pagination.Params
	// URL is the absolute request URL used to build next/previous links
	URL *url.URL
}

// CommentService defines the interface for comment operations
type CommentService interface {
	// Create operations
	CreateComment(ctx context.Context, payload map[string]interface{}) (*models.Comment, error)

	// Listings
	ListFirstLevel(ctx context.Context, entity string, page PageRequest) (*models.CommentsPage, error)
	ListUserHistory(ctx context.Context, user string, page PageRequest) (*models.CommentsPage, error)

	// CSV exports; nothing is written to w unless every parameter is valid
	ExportUserHistory(ctx context.Context, user string, dates DateRange, w io.Writer) error
	ExportEntityHistory(ctx context.Context, entity string, dates DateRange, w io.Writer) error

	// Threads; root must be present, its syntax is checked here
	GetThread(ctx context.Context, root string) (*models.CommentTreeNode, error)

	// Health pings the store
	Health(ctx context.Context) error
}
