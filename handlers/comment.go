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

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// populatedComment carries a comment with its author's username resolved.
type populatedComment struct {
	models.Comment `bson:",inline"`
	UserDoc        *models.User `bson:"userDoc"`
}

func (cm *populatedComment) view() gin.H {
	out := gin.H{
		"id":        cm.ID.Hex(),
		"content":   cm.Content,
		"post":      cm.Post.Hex(),
		"user":      gin.H{"id": cm.User.Hex()},
		"createdAt": cm.CreatedAt,
	}
	if cm.UserDoc != nil {
		out["user"] = gin.H{"id": cm.UserDoc.ID.Hex(), "username": cm.UserDoc.Username}
	}
	return out
}

func GetComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Post ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "post", Value: postID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "userDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$userDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Comments.Aggregate(ctx, pipeline)
	if err != nil {
		logger.S.Errorw("list comments aggregate failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching comments"})
		return
	}
	defer cursor.Close(ctx)

	var comments []populatedComment
	if err := cursor.All(ctx, &comments); err != nil {
		logger.S.Errorw("list comments decode failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while fetching comments"})
		return
	}

	response := make([]gin.H, len(comments))
	for i := range comments {
		response[i] = comments[i].view()
	}
	c.JSON(http.StatusOK, response)
}

func CreateComment(c *gin.Context) {
	user := currentUser(c)

	postID, err := primitive.ObjectIDFromHex(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Post ID"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("comment post lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while creating comment"})
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Content:   sanitize(req.Content),
		User:      user.ID,
		Post:      postID,
		CreatedAt: time.Now(),
	}

	if _, err := database.Comments.InsertOne(ctx, comment); err != nil {
		logger.S.Errorw("create comment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while creating comment"})
		return
	}

	// The comment is durable at this point; the notification is a derived
	// side effect whose failure must not affect this response.
	notifyEngine.CommentCreated(ctx, &post, &comment)

	populated := populatedComment{Comment: comment, UserDoc: user}
	c.JSON(http.StatusCreated, populated.view())
}

func UpdateComment(c *gin.Context) {
	user := currentUser(c)

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Comment ID"})
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err = database.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("update comment lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while updating comment"})
		return
	}

	if !isOwner(comment.User, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to edit this comment"})
		return
	}

	var updated models.Comment
	err = database.Comments.FindOneAndUpdate(
		ctx,
		bson.M{"_id": commentID},
		bson.M{"$set": bson.M{"content": sanitize(req.Content)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		logger.S.Errorw("update comment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while updating comment"})
		return
	}

	populated := populatedComment{Comment: updated, UserDoc: user}
	c.JSON(http.StatusOK, populated.view())
}

func DeleteComment(c *gin.Context) {
	user := currentUser(c)

	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Comment ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var comment models.Comment
	err = database.Comments.FindOne(ctx, bson.M{"_id": commentID}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("delete comment lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while deleting comment"})
		return
	}

	if !isOwner(comment.User, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this comment"})
		return
	}

	if _, err := database.Comments.DeleteOne(ctx, bson.M{"_id": commentID}); err != nil {
		logger.S.Errorw("delete comment failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while deleting comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
