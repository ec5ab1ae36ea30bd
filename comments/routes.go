// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package comments

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MaksimBoltov/comments/comments/handlers"
	platformconfig "github.com/MaksimBoltov/comments/internal/platform/config"
)

// CommentsHandlers holds all the handlers this router needs.
type CommentsHandlers struct {
	CommentHandler *handlers.CommentHandler
}

// RegisterRoutes is the single entry point for setting up comments routes.
// Routes that take an entity or user accept it either as the last path
// segment or as a query parameter.
func RegisterRoutes(app *fiber.App, handlers *CommentsHandlers, cfg *platformconfig.Config) {
	group := app.Group(cfg.Server.BaseRoute)
	h := handlers.CommentHandler

	group.Post("/new-comments", h.CreateComment)
	group.Get("/first-lvl-comments/:entity?", h.GetFirstLevelComments)
	group.Get("/history-comments/:user?", h.GetUserHistory)
	group.Get("/history/user", h.ExportUserHistory)
	group.Get("/history/entity", h.ExportEntityHistory)
	group.Get("/child-comments", h.GetChildComments)
	group.Get("/health", h.Health)
}
