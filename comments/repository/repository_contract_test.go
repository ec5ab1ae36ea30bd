// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"testing"
	"time"

	commentErrors "github.com/MaksimBoltov/comments/comments/errors"
	"github.com/MaksimBoltov/comments/comments/models"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores bundles the three repositories of one backing store
type stores struct {
	comments CommentRepository
	users    UserRepository
	types    EntityTypeRepository
}

type fixture struct {
	bob, alice          *models.User
	commentType, other  *models.EntityType
	entity              uuid.UUID
	first, second, last *models.Comment
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", "2000-01-01T"+clock)
	if err != nil {
		panic(err)
	}
	return t
}

// seed inserts three comments on one entity, in chronological order
func seed(t *testing.T, s stores) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		bob:         &models.User{ID: uuid.Must(uuid.NewV4()), Nickname: "bob", Firstname: "Bob"},
		alice:       &models.User{ID: uuid.Must(uuid.NewV4()), Nickname: "alice", Firstname: "Alice"},
		commentType: &models.EntityType{ID: 1, Name: "Comment", Description: "Type of parent entity is comment"},
		other:       &models.EntityType{ID: 2, Name: "Another entity", Description: "Type of parent entity is not comment"},
		entity:      uuid.Must(uuid.NewV4()),
	}
	require.NoError(t, s.users.Create(ctx, f.bob))
	require.NoError(t, s.users.Create(ctx, f.alice))
	require.NoError(t, s.types.Create(ctx, f.commentType))
	require.NoError(t, s.types.Create(ctx, f.other))

	newComment := func(user *models.User, clock, text string) *models.Comment {
		c := &models.Comment{
			ID:               uuid.Must(uuid.NewV4()),
			CreatedDate:      at(clock),
			User:             user,
			Text:             text,
			ParentEntity:     f.entity,
			ParentEntityType: f.other,
		}
		require.NoError(t, s.comments.Create(ctx, c))
		return c
	}
	f.first = newComment(f.bob, "08:00:01", "first")
	f.second = newComment(f.alice, "08:00:05", "second")
	f.last = newComment(f.bob, "08:00:10", "last")
	return f
}

func texts(comments []*models.Comment) []string {
	out := make([]string, len(comments))
	for i, c := range comments {
		out[i] = c.Text
	}
	return out
}

func testRepositoryContract(t *testing.T, open func(t *testing.T) stores) {
	ctx := context.Background()

	t.Run("FindByID joins author and type", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		found, err := s.comments.FindByID(ctx, f.second.ID)
		require.NoError(t, err)
		assert.Equal(t, "second", found.Text)
		require.NotNil(t, found.User)
		assert.Equal(t, "alice", found.User.Nickname)
		require.NotNil(t, found.ParentEntityType)
		assert.Equal(t, "Another entity", found.ParentEntityType.Name)
		assert.True(t, found.CreatedDate.Equal(at("08:00:05")))

		_, err = s.comments.FindByID(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, commentErrors.ErrCommentNotFound)
	})

	t.Run("by entity keeps natural order", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		found, err := s.comments.Find(ctx, CommentFilter{ParentEntity: &f.entity}, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "last"}, texts(found))
	})

	t.Run("by user is newest first", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		filter := CommentFilter{UserID: &f.bob.ID, Sort: SortNewestFirst}
		found, err := s.comments.Find(ctx, filter, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"last", "first"}, texts(found))

		count, err := s.comments.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		cases := []struct {
			name   string
			after  string
			before string
			want   []string
		}{
			{"start equal to first", "08:00:01", "", []string{"first", "second", "last"}},
			{"start one second later", "08:00:02", "", []string{"second", "last"}},
			{"end equal to last", "", "08:00:10", []string{"first", "second", "last"}},
			{"end one second earlier", "", "08:00:09", []string{"first", "second"}},
			{"closed range", "08:00:05", "08:00:05", []string{"second"}},
			{"empty range", "08:00:06", "08:00:09", []string{}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				filter := CommentFilter{ParentEntity: &f.entity}
				if tc.after != "" {
					after := at(tc.after)
					filter.CreatedAfter = &after
				}
				if tc.before != "" {
					before := at(tc.before)
					filter.CreatedBefore = &before
				}

				found, err := s.comments.Find(ctx, filter, 0, 0)
				require.NoError(t, err)
				assert.Equal(t, tc.want, texts(found))

				count, err := s.comments.Count(ctx, filter)
				require.NoError(t, err)
				assert.Equal(t, int64(len(tc.want)), count)
			})
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		filter := CommentFilter{ParentEntity: &f.entity}
		page, err := s.comments.Find(ctx, filter, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second"}, texts(page))

		page, err = s.comments.Find(ctx, filter, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"last"}, texts(page))

		page, err = s.comments.Find(ctx, filter, 2, 4)
		require.NoError(t, err)
		assert.Empty(t, page)
	})

	t.Run("FindChildren follows thread edges only", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		reply := &models.Comment{
			ID: uuid.Must(uuid.NewV4()), CreatedDate: at("09:00:00"), User: f.alice,
			Text: "reply", ParentEntity: f.first.ID, ParentEntityType: f.commentType,
		}
		attachment := &models.Comment{
			ID: uuid.Must(uuid.NewV4()), CreatedDate: at("09:00:01"), User: f.alice,
			Text: "attachment", ParentEntity: f.first.ID, ParentEntityType: f.other,
		}
		require.NoError(t, s.comments.Create(ctx, reply))
		require.NoError(t, s.comments.Create(ctx, attachment))

		children, err := s.comments.FindChildren(ctx, f.first.ID, "Comment")
		require.NoError(t, err)
		assert.Equal(t, []string{"reply"}, texts(children))

		children, err = s.comments.FindChildren(ctx, reply.ID, "Comment")
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("Create stamps the creation time", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		before := time.Now().UTC().Add(-time.Second)
		c := &models.Comment{User: f.bob, Text: "now", ParentEntity: f.entity, ParentEntityType: f.other}
		require.NoError(t, s.comments.Create(ctx, c))

		assert.NotEqual(t, uuid.Nil, c.ID)
		assert.True(t, c.CreatedDate.After(before))
	})

	t.Run("Create rejects an unknown author", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		ghost := &models.User{ID: uuid.Must(uuid.NewV4()), Nickname: "ghost"}
		c := &models.Comment{User: ghost, Text: "x", ParentEntity: f.entity, ParentEntityType: f.other}
		assert.ErrorIs(t, s.comments.Create(ctx, c), commentErrors.ErrUserNotFound)
	})

	t.Run("user lookups", func(t *testing.T) {
		s := open(t)
		f := seed(t, s)

		byID, err := s.users.FindByID(ctx, f.bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "bob", byID.Nickname)

		byName, err := s.users.FindByNickname(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, byName.ID)

		_, err = s.users.FindByNickname(ctx, "nobody")
		assert.ErrorIs(t, err, commentErrors.ErrUserNotFound)
		_, err = s.users.FindByID(ctx, uuid.Must(uuid.NewV4()))
		assert.ErrorIs(t, err, commentErrors.ErrUserNotFound)
	})

	t.Run("entity type lookups pick the lowest id on duplicate names", func(t *testing.T) {
		s := open(t)
		seed(t, s)

		duplicate := &models.EntityType{Name: "Comment", Description: "shadow"}
		require.NoError(t, s.types.Create(ctx, duplicate))
		assert.Greater(t, duplicate.ID, int64(2))

		byName, err := s.types.FindByName(ctx, "Comment")
		require.NoError(t, err)
		assert.Equal(t, int64(1), byName.ID)

		byID, err := s.types.FindByID(ctx, duplicate.ID)
		require.NoError(t, err)
		assert.Equal(t, "shadow", byID.Description)

		_, err = s.types.FindByID(ctx, 999)
		assert.ErrorIs(t, err, commentErrors.ErrEntityTypeNotFound)
		_, err = s.types.FindByName(ctx, "Unknown")
		assert.ErrorIs(t, err, commentErrors.ErrEntityTypeNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.comments.Ping(ctx))
	})
}
