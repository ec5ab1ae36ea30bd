// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	"time"

	uuid "github.com/gofrs/uuid"
)

// Comment represents the complete comment entity in the database
type Comment struct {
	ID               uuid.UUID   `json:"uuid_comment" db:"uuid_comment"`
	CreatedDate      time.Time   `json:"created_date" db:"created_date"`
	User             *User       `json:"-"`
	Text             string      `json:"text" db:"text"`
	ParentEntity     uuid.UUID   `json:"parent_entity" db:"parent_entity"`
	ParentEntityType *EntityType `json:"-"`
}

// UserID returns the author id, or nil when the author was removed.
func (c *Comment) UserID() *uuid.UUID {
	if c.User == nil {
		return nil
	}
	id := c.User.ID
	return &id
}

// ParentEntityTypeID returns the parent type id, or nil when the type was removed.
func (c *Comment) ParentEntityTypeID() *int64 {
	if c.ParentEntityType == nil {
		return nil
	}
	id := c.ParentEntityType.ID
	return &id
}

// Parent classifies the parent reference. threadType is the entity type
// name that marks a parent as another comment.
func (c *Comment) Parent(threadType string) EntityReference {
	kind := EntityKindOther
	if c.ParentEntityType != nil && c.ParentEntityType.Name == threadType {
		kind = EntityKindComment
	}
	return EntityReference{Kind: kind, ID: c.ParentEntity}
}

// CommentResponse represents the response format for comment data
type CommentResponse struct {
	ID               string  `json:"uuid_comment"`
	CreatedDate      string  `json:"created_date"`
	User             *string `json:"user"`
	Text             string  `json:"text"`
	ParentEntity     string  `json:"parent_entity"`
	ParentEntityType *string `json:"parent_entity_type"`
}

// NewCommentResponse renders a comment with the author nickname and type name
func NewCommentResponse(c *Comment) CommentResponse {
	resp := CommentResponse{
		ID:           c.ID.String(),
		CreatedDate:  FormatTimestamp(c.CreatedDate),
		Text:         c.Text,
		ParentEntity: c.ParentEntity.String(),
	}
	if c.User != nil {
		nickname := c.User.Nickname
		resp.User = &nickname
	}
	if c.ParentEntityType != nil {
		name := c.ParentEntityType.Name
		resp.ParentEntityType = &name
	}
	return resp
}

// CommentTreeNode is one comment with its nested replies
type CommentTreeNode struct {
	CommentResponse
	Child []*CommentTreeNode `json:"child"`
}

// CommentsPage is the paginated envelope returned by list endpoints
type CommentsPage struct {
	Count    int64             `json:"comments_count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Comments []CommentResponse `json:"comments"`
}

// MessageResponse is the uniform {name, message, status} envelope
type MessageResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// FormatTimestamp renders t in UTC as ISO-8601 with a Z suffix.
// Microseconds are included only when non-zero.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02T15:04:05.000000Z")
}

// Creation payload keys, in the order they are checked
const (
	FieldAuthor           = "author"
	FieldText             = "text"
	FieldParentEntityUUID = "parent_entity_uuid"
	FieldParentEntityType = "parent_entity_type"
)

// CommentDraft is a creation payload whose references are already resolved
type CommentDraft struct {
	Author           *User
	Text             string
	ParentEntity     uuid.UUID
	ParentEntityType *EntityType
}

// Comment builds the comment to store from the draft
func (d *CommentDraft) Comment() *Comment {
	return &Comment{
		User:             d.Author,
		Text:             d.Text,
		ParentEntity:     d.ParentEntity,
		ParentEntityType: d.ParentEntityType,
	}
}
