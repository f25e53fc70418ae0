package notifications

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"weblog/models"
)

// Store persists notification records.
type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

// Engine derives notifications from content events. Creation is
// best-effort: the triggering request already succeeded, so a failure
// here is logged and swallowed, never propagated.
type Engine struct {
	store Store
	log   *zap.SugaredLogger
}

func NewEngine(store Store, log *zap.SugaredLogger) *Engine {
	return &Engine{store: store, log: log}
}

// CommentCreated notifies the post owner that someone commented. A
// self-comment produces nothing. Runs synchronously inside the comment
// request; it is attempted exactly once with no retry.
func (e *Engine) CommentCreated(ctx context.Context, post *models.Post, comment *models.Comment) {
	if post.User == comment.User {
		return
	}

	n := &models.Notification{
		ID:        primitive.NewObjectID(),
		Recipient: post.User,
		Sender:    comment.User,
		Post:      post.ID,
		Type:      models.NotificationTypeComment,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := e.store.Create(ctx, n); err != nil {
		e.log.Warnw("notification creation failed",
			"recipient", n.Recipient.Hex(),
			"sender", n.Sender.Hex(),
			"post", n.Post.Hex(),
			"error", err,
		)
	}
}
