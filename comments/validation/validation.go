// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/identifier"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/repository"
)

var requiredFields = []string{
	models.FieldAuthor,
	models.FieldText,
	models.FieldParentEntityUUID,
	models.FieldParentEntityType,
}

// ParsePayload decodes a creation body, which must be a JSON object
func ParsePayload(body []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, commentErrors.InvalidJSONError(err)
	}
	if payload == nil || decoder.More() {
		return nil, commentErrors.InvalidJSONError(nil)
	}
	return payload, nil
}

// CommentValidator is the only gate in front of comment creation
type CommentValidator struct {
	resolver    *identifier.Resolver
	entityTypes repository.EntityTypeRepository
}

// NewCommentValidator creates a validator over the lookup stores
func NewCommentValidator(resolver *identifier.Resolver, entityTypes repository.EntityTypeRepository) *CommentValidator {
	return &CommentValidator{resolver: resolver, entityTypes: entityTypes}
}

// Validate checks the payload and stops at the first failure. The draft
// carries the author and type it resolved so creation need not look them
// up again.
func (v *CommentValidator) Validate(ctx context.Context, payload map[string]interface{}) (*models.CommentDraft, error) {
	for _, key := range requiredFields {
		if _, ok := payload[key]; !ok {
			return nil, commentErrors.MissingFieldError(key)
		}
	}

	author := Stringify(payload[models.FieldAuthor])
	user, err := v.resolver.ResolveUser(ctx, author)
	if err != nil {
		if errors.Is(err, commentErrors.ErrUserNotFound) {
			return nil, commentErrors.AuthorNotFoundError(author)
		}
		return nil, commentErrors.WrapDatabaseError(err)
	}

	parentEntity, ok := identifier.ParseUUID(Stringify(payload[models.FieldParentEntityUUID]))
	if !ok {
		return nil, commentErrors.ParentEntityNotUUIDError()
	}

	entityType, err := v.resolveEntityType(ctx, Stringify(payload[models.FieldParentEntityType]))
	if err != nil {
		if errors.Is(err, commentErrors.ErrEntityTypeNotFound) {
			return nil, commentErrors.EntityTypeNotFoundError()
		}
		return nil, commentErrors.WrapDatabaseError(err)
	}

	return &models.CommentDraft{
		Author:           user,
		Text:             Stringify(payload[models.FieldText]),
		ParentEntity:     parentEntity,
		ParentEntityType: entityType,
	}, nil
}

// resolveEntityType looks all-digit values up by id and the rest by name
func (v *CommentValidator) resolveEntityType(ctx context.Context, value string) (*models.EntityType, error) {
	if isDigits(value) {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, commentErrors.ErrEntityTypeNotFound
		}
		return v.entityTypes.FindByID(ctx, id)
	}
	return v.entityTypes.FindByName(ctx, value)
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Stringify renders a decoded JSON value as the text used for lookups.
// Whole numbers lose their fraction, so 1 and 1.0 both become "1".
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := v.Float64(); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return v.String()
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
