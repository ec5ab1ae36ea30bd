// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package pagination slices query results into numbered pages and builds
// the comments_count/next/previous envelope around them.
package pagination

import (
	"context"
	"net/url"
	"strconv"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
)

const (
	pageParam = "page"
	lastPage  = "last"
)

// Params are the raw paging query parameters
type Params struct {
	Page     string `query:"page"`
	PageSize string `query:"page_size"`
}

// Policy is one pagination configuration. Listings differ only in their
// default page size.
type Policy struct {
	DefaultPageSize int
	MaxPageSize     int
}

// NewPolicy creates a policy; a non-positive max disables the cap
func NewPolicy(defaultPageSize, maxPageSize int) Policy {
	return Policy{DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

// PageSize returns the requested size when it is a positive integer,
// capped at MaxPageSize, and the default otherwise
func (p Policy) PageSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return p.DefaultPageSize
	}
	if p.MaxPageSize > 0 && size > p.MaxPageSize {
		return p.MaxPageSize
	}
	return size
}

// Window is one resolved page
type Window struct {
	Number   int
	Size     int
	NumPages int
}

// Offset is the index of the first row of the page
func (w Window) Offset() int {
	return (w.Number - 1) * w.Size
}

// HasNext reports whether a later page exists
func (w Window) HasNext() bool {
	return w.Number < w.NumPages
}

// HasPrevious reports whether an earlier page exists
func (w Window) HasPrevious() bool {
	return w.Number > 1
}

// Resolve picks the requested page out of total rows. Page 1 of an empty
// result is valid; anything past the last page is ErrInvalidPage.
func (p Policy) Resolve(params Params, total int64) (Window, error) {
	size := p.PageSize(params.PageSize)
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages == 0 {
		numPages = 1
	}

	number := 1
	switch params.Page {
	case "":
	case lastPage:
		number = numPages
	default:
		n, err := strconv.Atoi(params.Page)
		if err != nil || n < 1 || n > numPages {
			return Window{}, commentErrors.InvalidPageError()
		}
		number = n
	}

	return Window{Number: number, Size: size, NumPages: numPages}, nil
}

// Links renders the next and previous page URLs from the request URL
func Links(requestURL *url.URL, w Window) (next, previous *string) {
	if requestURL == nil {
		return nil, nil
	}
	if w.HasNext() {
		link := withPage(requestURL, w.Number+1)
		next = &link
	}
	if w.HasPrevious() {
		link := withPage(requestURL, w.Number-1)
		previous = &link
	}
	return next, previous
}

// withPage replaces the page parameter; page 1 drops it
func withPage(requestURL *url.URL, number int) string {
	u := *requestURL
	query := u.Query()
	if number == 1 {
		query.Del(pageParam)
	} else {
		query.Set(pageParam, strconv.Itoa(number))
	}
	u.RawQuery = query.Encode()
	return u.String()
}

// Source is a countable, sliceable comment query
type Source interface {
	Count(ctx context.Context) (int64, error)
	Fetch(ctx context.Context, limit, offset int) ([]*models.Comment, error)
}

// Paginate counts the source, fetches the requested page and wraps it
func (p Policy) Paginate(ctx context.Context, src Source, params Params, requestURL *url.URL) (*models.CommentsPage, error) {
	total, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}

	window, err := p.Resolve(params, total)
	if err != nil {
		return nil, err
	}

	page := &models.CommentsPage{Count: total, Comments: []models.CommentResponse{}}
	if total > 0 {
		rows, err := src.Fetch(ctx, window.Size, window.Offset())
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			page.Comments = append(page.Comments, models.NewCommentResponse(row))
		}
	}
	page.Next, page.Previous = Links(requestURL, window)
	return page, nil
}
