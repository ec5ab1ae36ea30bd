// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/export"
	"github.com/MaksimBoltov/comments/comments/pagination"
	"github.com/MaksimBoltov/comments/comments/services"
	"github.com/MaksimBoltov/comments/comments/validation"
	"github.com/MaksimBoltov/comments/internal/pkg/log"
	"github.com/MaksimBoltov/comments/internal/pkg/parser"
)

// CommentHandler handles all comment-related HTTP requests
type CommentHandler struct {
	commentService services.CommentService
}

// NewCommentHandler creates a new CommentHandler with injected dependencies
func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment handles comment creation
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	payload, err := validation.ParsePayload(c.Body())
	if err != nil {
		return errors.HandleServiceError(c, err)
	}
	log.Dump("create comment payload", payload)

	if _, err := h.commentService.CreateComment(c.UserContext(), payload); err != nil {
		return h.fail(c, err)
	}
	return errors.HandleCreated(c)
}

// GetFirstLevelComments lists the comments attached to an entity
func (h *CommentHandler) GetFirstLevelComments(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	result, err := h.commentService.ListFirstLevel(c.UserContext(), paramOrQuery(c, "entity"), page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// GetUserHistory lists a user's comments, newest first
func (h *CommentHandler) GetUserHistory(c *fiber.Ctx) error {
	page, err := pageRequest(c)
	if err != nil {
		return errors.HandleServiceError(c, err)
	}

	result, err := h.commentService.ListUserHistory(c.UserContext(), paramOrQuery(c, "user"), page)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// ExportUserHistory sends a user's comments as a CSV attachment
func (h *CommentHandler) ExportUserHistory(c *fiber.Ctx) error {
	var body bytes.Buffer
	err := h.commentService.ExportUserHistory(c.UserContext(), c.Query("user"), dateRange(c), &body)
	if err != nil {
		return h.fail(c, err)
	}
	return sendCSV(c, body.Bytes())
}

// ExportEntityHistory sends an entity's comments as a CSV attachment
func (h *CommentHandler) ExportEntityHistory(c *fiber.Ctx) error {
	var body bytes.Buffer
	err := h.commentService.ExportEntityHistory(c.UserContext(), c.Query("entity"), dateRange(c), &body)
	if err != nil {
		return h.fail(c, err)
	}
	return sendCSV(c, body.Bytes())
}

// GetChildComments returns the reply tree under the root comment
func (h *CommentHandler) GetChildComments(c *fiber.Ctx) error {
	if !hasQuery(c, "root") {
		return errors.HandleServiceError(c, errors.MissingRootError())
	}

	node, err := h.commentService.GetThread(c.UserContext(), c.Query("root"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(node)
}

// Health reports whether the comment store answers
func (h *CommentHandler) Health(c *fiber.Ctx) error {
	if err := h.commentService.Health(c.UserContext()); err != nil {
		log.ErrorWithContext(c.UserContext(), "health check failed: %v", err)
		return c.Status(http.StatusServiceUnavailable).JSON(errors.NewMessageResponse(http.StatusServiceUnavailable, "Store is unavailable."))
	}
	return c.Status(http.StatusOK).JSON(errors.NewMessageResponse(http.StatusOK, "OK"))
}

// fail logs unexpected failures before rendering the envelope
func (h *CommentHandler) fail(c *fiber.Ctx, err error) error {
	if commentErr, ok := errors.AsCommentError(err); !ok || commentErr.Code == errors.CodeDatabaseError {
		log.ErrorWithContext(c.UserContext(), "%s %s failed: %v", c.Method(), c.Path(), err)
	}
	return errors.HandleServiceError(c, err)
}

// paramOrQuery reads a route parameter, falling back to the query string
func paramOrQuery(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if raw == "" {
		return c.Query(key)
	}
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}

func hasQuery(c *fiber.Ctx, key string) bool {
	return c.Context().QueryArgs().Has(key)
}

func dateRange(c *fiber.Ctx) services.DateRange {
	return services.DateRange{
		Start:    c.Query("start_date"),
		HasStart: hasQuery(c, "start_date"),
		End:      c.Query("end_date"),
		HasEnd:   hasQuery(c, "end_date"),
	}
}

// pageRequest decodes page/page_size and the absolute request URL
func pageRequest(c *fiber.Ctx) (services.PageRequest, error) {
	var params pagination.Params
	if err := parser.DecodeQuery(c, &params); err != nil {
		return services.PageRequest{}, errors.InvalidPageError()
	}

	requestURL, err := url.Parse(c.BaseURL() + c.OriginalURL())
	if err != nil {
		return services.PageRequest{}, fmt.Errorf("failed to parse request URL: %w", err)
	}
	return services.PageRequest{Params: params, URL: requestURL}, nil
}

func sendCSV(c *fiber.Ctx, body []byte) error {
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	return c.Status(http.StatusOK).Send(body)
}
