package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single document in the users collection. Username and email
// carry unique indexes (see database.EnsureIndexes).
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password" json:"-"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Socials        Socials            `bson:"socials" json:"socials"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// Socials holds free-text handles/URLs; no format validation is applied.
type Socials struct {
	Twitter   string `bson:"twitter" json:"twitter"`
	Instagram string `bson:"instagram" json:"instagram"`
	TikTok    string `bson:"tiktok" json:"tiktok"`
}

// PublicProfile is the subset of a user safe to show anyone.
type PublicProfile struct {
	ID             primitive.ObjectID `bson:"_id" json:"id"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
	Bio            string             `bson:"bio" json:"bio"`
	Socials        Socials            `bson:"socials" json:"socials"`
}
