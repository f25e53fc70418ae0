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

// populatedNotification resolves the sender's username and the post's
// title for display.
type populatedNotification struct {
	models.Notification `bson:",inline"`
	SenderDoc           *models.User `bson:"senderDoc"`
	PostDoc             *models.Post `bson:"postDoc"`
}

func (n *populatedNotification) view() gin.H {
	out := gin.H{
		"id":        n.ID.Hex(),
		"recipient": n.Recipient.Hex(),
		"sender":    gin.H{"id": n.Sender.Hex()},
		"post":      gin.H{"id": n.Post.Hex()},
		"type":      n.Type,
		"isRead":    n.IsRead,
		"createdAt": n.CreatedAt,
	}
	if n.SenderDoc != nil {
		out["sender"] = gin.H{"id": n.SenderDoc.ID.Hex(), "username": n.SenderDoc.Username}
	}
	if n.PostDoc != nil {
		out["post"] = gin.H{"id": n.PostDoc.ID.Hex(), "title": n.PostDoc.Title}
	}
	return out
}

func ListNotifications(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "recipient", Value: user.ID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "sender"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "senderDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$senderDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "posts"},
			{Key: "localField", Value: "post"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "postDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$postDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := database.Notifications.Aggregate(ctx, pipeline)
	if err != nil {
		logger.S.Errorw("list notifications aggregate failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching notifications"})
		return
	}
	defer cursor.Close(ctx)

	var items []populatedNotification
	if err := cursor.All(ctx, &items); err != nil {
		logger.S.Errorw("list notifications decode failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching notifications"})
		return
	}

	response := make([]gin.H, len(items))
	for i := range items {
		response[i] = items[i].view()
	}
	c.JSON(http.StatusOK, response)
}

func UnreadNotificationCount(c *gin.Context) {
	user := currentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	count, err := database.Notifications.CountDocuments(ctx, bson.M{
		"recipient": user.ID,
		"isRead":    false,
	})
	if err != nil {
		logger.S.Errorw("unread count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkNotificationRead flips the read flag. Idempotent: re-marking an
// already read notification succeeds and leaves isRead true.
func MarkNotificationRead(c *gin.Context) {
	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var updated models.Notification
	err = database.Notifications.FindOneAndUpdate(
		ctx,
		bson.M{"_id": notificationID},
		bson.M{"$set": bson.M{"isRead": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("mark notification read failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error updating notification"})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func DeleteNotification(c *gin.Context) {
	user := currentUser(c)

	notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Notification ID"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var notification models.Notification
	err = database.Notifications.FindOne(ctx, bson.M{"_id": notificationID}).Decode(&notification)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Notification not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("delete notification lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error deleting notification"})
		return
	}

	// Deletion is recipient-only; the recipient field is the identity
	// column here, not a generic owner reference.
	if !isOwner(notification.Recipient, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this notification"})
		return
	}

	if _, err := database.Notifications.DeleteOne(ctx, bson.M{"_id": notificationID}); err != nil {
		logger.S.Errorw("delete notification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error deleting notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
