// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package models

import (
	uuid "github.com/gofrs/uuid"
)

// User is a comment author
type User struct {
	ID        uuid.UUID `json:"uuid_user" db:"uuid_user"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Firstname string    `json:"firstname" db:"firstname"`
}

func (u *User) String() string {
	return u.Nickname
}

// EntityType names the kind of resource a comment is attached to.
// Names are not unique.
type EntityType struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

func (t *EntityType) String() string {
	return t.Name
}

// EntityKind tells whether a parent reference points at another comment
type EntityKind int

const (
	EntityKindOther EntityKind = iota
	EntityKindComment
)

func (k EntityKind) String() string {
	if k == EntityKindComment {
		return "comment"
	}
	return "other"
}

// EntityReference is the parent of a comment: a thread edge when Kind is
// EntityKindComment, an external attachment otherwise.
type EntityReference struct {
	Kind EntityKind
	ID   uuid.UUID
}

// IsThreadEdge reports whether the reference points at another comment
func (r EntityReference) IsThreadEdge() bool {
	return r.Kind == EntityKindComment
}
