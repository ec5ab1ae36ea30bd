// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package identifier resolves user references given either as a UUID or
// as a nickname. Creation, history and export all go through Resolver.
package identifier

import (
	"context"
	"regexp"

	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/repository"
	"github.com/gofrs/uuid"
)

// canonical is the hyphenated 8-4-4-4-12 form; uuid.FromString alone
// also accepts braced, urn and unhyphenated forms
var canonical = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsIdentifierUUID reports whether value is a UUID in canonical textual form
func IsIdentifierUUID(value string) bool {
	if !canonical.MatchString(value) {
		return false
	}
	_, err := uuid.FromString(value)
	return err == nil
}

// ParseUUID parses value in canonical form
func ParseUUID(value string) (uuid.UUID, bool) {
	if !IsIdentifierUUID(value) {
		return uuid.Nil, false
	}
	id, err := uuid.FromString(value)
	return id, err == nil
}

// Resolver looks users up by id or nickname
type Resolver struct {
	users repository.UserRepository
}

// NewResolver creates a Resolver over the given user store
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// ResolveUser returns the user named by value. A canonical UUID is looked
// up by id only, anything else by nickname only. The repository's
// ErrUserNotFound is returned unchanged when nothing matches.
func (r *Resolver) ResolveUser(ctx context.Context, value string) (*models.User, error) {
	if id, ok := ParseUUID(value); ok {
		return r.users.FindByID(ctx, id)
	}
	return r.users.FindByNickname(ctx, value)
}
