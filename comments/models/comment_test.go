package models

import (
	"encoding/json"
	"testing"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentModel(t *testing.T) {
	commentType := &EntityType{ID: 1, Name: "Comment"}
	otherType := &EntityType{ID: 2, Name: "Another entity"}

	t.Run("Parent classifies thread edges", func(t *testing.T) {
		parent := uuid.Must(uuid.NewV4())
		comment := &Comment{ParentEntity: parent, ParentEntityType: commentType}

		ref := comment.Parent("Comment")
		assert.Equal(t, EntityKindComment, ref.Kind)
		assert.Equal(t, parent, ref.ID)
		assert.True(t, ref.IsThreadEdge())
	})

	t.Run("Parent classifies external attachments", func(t *testing.T) {
		comment := &Comment{ParentEntity: uuid.Must(uuid.NewV4()), ParentEntityType: otherType}
		assert.False(t, comment.Parent("Comment").IsThreadEdge())

		comment.ParentEntityType = nil
		assert.Equal(t, EntityKindOther, comment.Parent("Comment").Kind)
	})

	t.Run("Nullable references", func(t *testing.T) {
		comment := &Comment{}
		assert.Nil(t, comment.UserID())
		assert.Nil(t, comment.ParentEntityTypeID())

		user := &User{ID: uuid.Must(uuid.NewV4()), Nickname: "bob"}
		comment.User = user
		comment.ParentEntityType = otherType
		require.NotNil(t, comment.UserID())
		assert.Equal(t, user.ID, *comment.UserID())
		assert.Equal(t, int64(2), *comment.ParentEntityTypeID())
	})
}

func TestCommentResponse(t *testing.T) {
	id := uuid.Must(uuid.FromString("1774b247-8c1a-4dcb-8f43-d0b1a63da7ce"))
	parent := uuid.Must(uuid.FromString("d15b567b-2fc6-4ffc-b8bc-19df543d322d"))

	t.Run("renders nickname and type name", func(t *testing.T) {
		comment := &Comment{
			ID:               id,
			CreatedDate:      time.Date(2021, 9, 6, 11, 16, 10, 0, time.UTC),
			User:             &User{Nickname: "maksim"},
			Text:             "L1 child1",
			ParentEntity:     parent,
			ParentEntityType: &EntityType{ID: 1, Name: "Comment"},
		}

		data, err := json.Marshal(NewCommentResponse(comment))
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"uuid_comment": "1774b247-8c1a-4dcb-8f43-d0b1a63da7ce",
			"created_date": "2021-09-06T11:16:10Z",
			"user": "maksim",
			"text": "L1 child1",
			"parent_entity": "d15b567b-2fc6-4ffc-b8bc-19df543d322d",
			"parent_entity_type": "Comment"
		}`, string(data))
	})

	t.Run("removed author and type render as null", func(t *testing.T) {
		resp := NewCommentResponse(&Comment{ID: id, ParentEntity: parent})
		assert.Nil(t, resp.User)
		assert.Nil(t, resp.ParentEntityType)
	})
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2000-01-01T08:00:01Z", FormatTimestamp(time.Date(2000, 1, 1, 8, 0, 1, 0, time.UTC)))
	assert.Equal(t, "2000-01-01T08:00:01.000250Z", FormatTimestamp(time.Date(2000, 1, 1, 8, 0, 1, 250000, time.UTC)))

	moscow := time.FixedZone("MSK", 3*60*60)
	assert.Equal(t, "2000-01-01T05:00:01Z", FormatTimestamp(time.Date(2000, 1, 1, 8, 0, 1, 0, moscow)))
}
