package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
