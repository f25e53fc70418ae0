package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationTypeComment is the only notification type emitted today.
const NotificationTypeComment = "comment"

// Notification is a derived record created as a side effect of comment
// creation. Recipient is the post owner, sender the commenter; the two
// are never the same user.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient primitive.ObjectID `bson:"recipient" json:"recipient"`
	Sender    primitive.ObjectID `bson:"sender" json:"sender"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	Type      string             `bson:"type" json:"type"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
