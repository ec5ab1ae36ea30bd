// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package seed loads the demo users, entity types and comment thread.
// Every insert is skipped when the row already exists, so loading twice
// is harmless.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/MaksimBoltov/comments/comments/repository"
	"github.com/gofrs/uuid"
)

// Demo identifiers referenced by tests and documentation
var (
	RootCommentID = uuid.Must(uuid.FromString("d15b567b-2fc6-4ffc-b8bc-19df543d322d"))
	RootEntityID  = uuid.Must(uuid.FromString("d15b567b-2fc6-4ffc-b8bc-19df543d311d"))
)

var users = []models.User{
	{ID: uuid.Must(uuid.FromString("7e3a46ec-65c1-49a3-87b2-60b34c0e14c1")), Nickname: "vanya", Firstname: "Ivan"},
	{ID: uuid.Must(uuid.FromString("871d2d00-c722-45a7-becd-e4332c03e4a5")), Nickname: "maksim", Firstname: "Maksim"},
	{ID: uuid.Must(uuid.FromString("30800c0c-ade9-411f-bdd6-20df13912e7e")), Nickname: "oleg", Firstname: "Oleg"},
	{ID: uuid.Must(uuid.FromString("ef1d5da4-bf29-4e1a-bfe2-5c134c57a362")), Nickname: "user", Firstname: "User"},
}

var entityTypes = []models.EntityType{
	{ID: 1, Name: "Comment", Description: "Type of parent entity is comment"},
	{ID: 2, Name: "Another entity", Description: "Type of parent entity is not comment"},
}

type demoComment struct {
	id       string
	created  time.Time
	text     string
	parent   string
	typeID   int64
	nickname string
}

func at(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.UTC)
}

var comments = []demoComment{
	{"d15b567b-2fc6-4ffc-b8bc-19df543d322d", at(2021, 8, 6, 10, 0, 0), "ROOT", "d15b567b-2fc6-4ffc-b8bc-19df543d311d", 2, "user"},

	{"1774b247-8c1a-4dcb-8f43-d0b1a63da7ce", at(2021, 9, 6, 11, 16, 10), "L1 child1", "d15b567b-2fc6-4ffc-b8bc-19df543d322d", 1, "maksim"},
	{"21af83e3-bac5-484a-aab1-eb24810d0d8b", at(2021, 9, 6, 11, 19, 11), "L1 child2", "d15b567b-2fc6-4ffc-b8bc-19df543d322d", 1, "vanya"},
	{"5272e26c-bb9f-494a-9803-173a635dad41", at(2021, 9, 6, 11, 19, 35), "L1 child3", "d15b567b-2fc6-4ffc-b8bc-19df543d322d", 1, "user"},
	{"5a3e0b12-4d65-4290-8323-d3f9a6a8c733", at(2021, 9, 6, 11, 19, 51), "L1 child4", "d15b567b-2fc6-4ffc-b8bc-19df543d322d", 1, "oleg"},

	{"15aaddb4-64af-4b0d-b509-7605d214a9fd", at(2021, 9, 6, 12, 20, 11), "L2 child1", "1774b247-8c1a-4dcb-8f43-d0b1a63da7ce", 1, "oleg"},
	{"60e8a95b-e4ba-4778-aceb-fdb6d1adbc76", at(2021, 9, 6, 12, 20, 32), "L2 child2", "1774b247-8c1a-4dcb-8f43-d0b1a63da7ce", 1, "maksim"},
	{"71cd41f3-63cd-4ccb-b996-5dba1e818f1d", at(2021, 9, 6, 12, 20, 57), "L2 child3", "5a3e0b12-4d65-4290-8323-d3f9a6a8c733", 1, "vanya"},
	{"8876f65d-3292-4fcd-a73d-66f5cde063c8", at(2021, 9, 6, 13, 21, 27), "L2 child4", "5a3e0b12-4d65-4290-8323-d3f9a6a8c733", 1, "user"},

	{"52e3317b-0abc-4815-9383-393712c4dd88", at(2021, 9, 7, 14, 21, 50), "L3 child1", "15aaddb4-64af-4b0d-b509-7605d214a9fd", 1, "user"},
	{"29866969-33e9-4f3c-8a7e-1c281a4a8a78", at(2021, 9, 7, 15, 22, 11), "L3 child2", "8876f65d-3292-4fcd-a73d-66f5cde063c8", 1, "user"},

	{"83448eb5-9725-4fcd-a5d5-cd74ff524ecb", at(2021, 9, 7, 15, 22, 28), "L4 child", "52e3317b-0abc-4815-9383-393712c4dd88", 1, "maksim"},
}

// Summary counts what DemoData wrote
type Summary struct {
	Users       int
	EntityTypes int
	Comments    int
}

// DemoData inserts the demo users, entity types and comments
func DemoData(ctx context.Context, userRepo repository.UserRepository, typeRepo repository.EntityTypeRepository, commentRepo repository.CommentRepository) (Summary, error) {
	var summary Summary

	byNickname := make(map[string]*models.User, len(users))
	for i := range users {
		user := users[i]
		if err := userRepo.Create(ctx, &user); err != nil {
			return summary, fmt.Errorf("failed to seed user %s: %w", user.Nickname, err)
		}
		byNickname[user.Nickname] = &user
		summary.Users++
	}

	byID := make(map[int64]*models.EntityType, len(entityTypes))
	for i := range entityTypes {
		entityType := entityTypes[i]
		if err := typeRepo.Create(ctx, &entityType); err != nil {
			return summary, fmt.Errorf("failed to seed entity type %s: %w", entityType.Name, err)
		}
		byID[entityType.ID] = &entityType
		summary.EntityTypes++
	}

	for _, demo := range comments {
		comment := &models.Comment{
			ID:               uuid.Must(uuid.FromString(demo.id)),
			CreatedDate:      demo.created,
			User:             byNickname[demo.nickname],
			Text:             demo.text,
			ParentEntity:     uuid.Must(uuid.FromString(demo.parent)),
			ParentEntityType: byID[demo.typeID],
		}
		if err := commentRepo.Create(ctx, comment); err != nil {
			return summary, fmt.Errorf("failed to seed comment %q: %w", demo.text, err)
		}
		summary.Comments++
	}

	return summary, nil
}

// MemoryStore returns an in-memory store loaded with the demo data
func MemoryStore(ctx context.Context) (*repository.MemoryStore, error) {
	store := repository.NewMemoryStore()
	if _, err := DemoData(ctx, store.Users(), store.EntityTypes(), store.Comments()); err != nil {
		return nil, err
	}
	return store, nil
}
