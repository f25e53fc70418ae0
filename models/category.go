package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category is read-only from the API; the set is seeded at boot.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}
