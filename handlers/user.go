package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"weblog/database"
	"weblog/logger"
	"weblog/models"
)

const bioMaxLen = 200

func GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateProfile accepts multipart form fields bio/twitter/instagram/
// tiktok plus an optional profilePicture image. Absent fields keep their
// stored values.
func UpdateProfile(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	set := bson.M{}

	if bio, ok := c.GetPostForm("bio"); ok {
		if len(bio) > bioMaxLen {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "bio", Message: "Bio cannot be more than 200 characters"},
			}})
			return
		}
		set["bio"] = sanitize(bio)
	}
	if twitter, ok := c.GetPostForm("twitter"); ok {
		set["socials.twitter"] = twitter
	}
	if instagram, ok := c.GetPostForm("instagram"); ok {
		set["socials.instagram"] = instagram
	}
	if tiktok, ok := c.GetPostForm("tiktok"); ok {
		set["socials.tiktok"] = tiktok
	}

	if newURL, ok := uploadFormImage(c, "profilePicture", "weblog/profiles"); !ok {
		return
	} else if newURL != "" {
		deleteStoredImage(ctx, user.ProfilePicture)
		set["profilePicture"] = newURL
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, user)
		return
	}

	var updated models.User
	err := database.Users.FindOneAndUpdate(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("update profile failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating profile"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func GetPublicProfile(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid User ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var profile models.PublicProfile
	err = database.Users.FindOne(
		ctx,
		bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{
			"username":       1,
			"profilePicture": 1,
			"bio":            1,
			"socials":        1,
		}),
	).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("public profile lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching public profile"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
