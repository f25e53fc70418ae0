package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"weblog/models"
)

type fakeStore struct {
	created []*models.Notification
	err     error
}

func (f *fakeStore) Create(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, n)
	return nil
}

func TestCommentCreatedNotifiesPostOwner(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, zap.NewNop().Sugar())

	owner := primitive.NewObjectID()
	commenter := primitive.NewObjectID()
	post := &models.Post{ID: primitive.NewObjectID(), User: owner}
	comment := &models.Comment{ID: primitive.NewObjectID(), User: commenter, Post: post.ID}

	engine.CommentCreated(context.Background(), post, comment)

	require.Len(t, store.created, 1)
	n := store.created[0]
	assert.Equal(t, owner, n.Recipient)
	assert.Equal(t, commenter, n.Sender)
	assert.Equal(t, post.ID, n.Post)
	assert.Equal(t, models.NotificationTypeComment, n.Type)
	assert.False(t, n.IsRead)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestCommentCreatedSelfCommentIsSilent(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(store, zap.NewNop().Sugar())

	owner := primitive.NewObjectID()
	post := &models.Post{ID: primitive.NewObjectID(), User: owner}
	comment := &models.Comment{ID: primitive.NewObjectID(), User: owner, Post: post.ID}

	engine.CommentCreated(context.Background(), post, comment)

	assert.Empty(t, store.created)
}

func TestCommentCreatedSwallowsStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("store unavailable")}
	engine := NewEngine(store, zap.NewNop().Sugar())

	post := &models.Post{ID: primitive.NewObjectID(), User: primitive.NewObjectID()}
	comment := &models.Comment{ID: primitive.NewObjectID(), User: primitive.NewObjectID(), Post: post.ID}

	assert.NotPanics(t, func() {
		engine.CommentCreated(context.Background(), post, comment)
	})
	assert.Empty(t, store.created)
}
