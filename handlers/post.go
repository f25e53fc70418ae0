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
	"weblog/storage"
)

const (
	titleMinLen   = 5
	titleMaxLen   = 200
	contentMinLen = 10
)

// validatePostInput checks the writable post fields. With partial set,
// empty fields are treated as "not provided" rather than invalid.
func validatePostInput(title, content, category string, partial bool) []FieldError {
	var errs []FieldError

	if title == "" {
		if !partial {
			errs = append(errs, FieldError{Field: "title", Message: "Title is required"})
		}
	} else if len(title) < titleMinLen || len(title) > titleMaxLen {
		errs = append(errs, FieldError{Field: "title", Message: "Title must be between 5 and 200 characters"})
	}

	if content == "" {
		if !partial {
			errs = append(errs, FieldError{Field: "content", Message: "Content is required"})
		}
	} else if len(content) < contentMinLen {
		errs = append(errs, FieldError{Field: "content", Message: "Content must be at least 10 characters long"})
	}

	if category == "" {
		if !partial {
			errs = append(errs, FieldError{Field: "category", Message: "Category ID is required"})
		}
	} else if _, err := primitive.ObjectIDFromHex(category); err != nil {
		errs = append(errs, FieldError{Field: "category", Message: "Invalid Category ID format"})
	}

	return errs
}

// populatedPost carries a post with its category and author resolved.
type populatedPost struct {
	models.Post `bson:",inline"`
	CategoryDoc *models.Category `bson:"categoryDoc"`
	UserDoc     *models.User     `bson:"userDoc"`
}

func (p *populatedPost) view() gin.H {
	out := gin.H{
		"id":        p.ID.Hex(),
		"title":     p.Title,
		"content":   p.Content,
		"user":      p.User.Hex(),
		"imageUrl":  p.ImageURL,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}

	if p.CategoryDoc != nil {
		out["category"] = gin.H{"id": p.CategoryDoc.ID.Hex(), "name": p.CategoryDoc.Name}
	} else {
		out["category"] = gin.H{"id": p.Category.Hex()}
	}

	if p.UserDoc != nil {
		out["user"] = gin.H{"id": p.UserDoc.ID.Hex(), "username": p.UserDoc.Username}
	}

	return out
}

func postLookupPipeline(match bson.D, sort bson.D, withUser bool) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: sort}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "categories"},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryDoc"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$categoryDoc"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	if withUser {
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: "users"},
				{Key: "localField", Value: "user"},
				{Key: "foreignField", Value: "_id"},
				{Key: "as", Value: "userDoc"},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$userDoc"},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}

	return pipeline
}

func ListPosts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	pipeline := postLookupPipeline(bson.D{}, bson.D{{Key: "createdAt", Value: -1}}, false)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		logger.S.Errorw("list posts aggregate failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}
	defer cursor.Close(ctx)

	var posts []populatedPost
	if err := cursor.All(ctx, &posts); err != nil {
		logger.S.Errorw("list posts decode failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	response := make([]gin.H, len(posts))
	for i := range posts {
		response[i] = posts[i].view()
	}
	c.JSON(http.StatusOK, response)
}

func GetPost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Post ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	pipeline := postLookupPipeline(
		bson.D{{Key: "_id", Value: postID}},
		bson.D{{Key: "createdAt", Value: -1}},
		true,
	)

	cursor, err := database.Posts.Aggregate(ctx, pipeline)
	if err != nil {
		logger.S.Errorw("get post aggregate failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}
	defer cursor.Close(ctx)

	var posts []populatedPost
	if err := cursor.All(ctx, &posts); err != nil {
		logger.S.Errorw("get post decode failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch post"})
		return
	}
	if len(posts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	c.JSON(http.StatusOK, posts[0].view())
}

func CreatePost(c *gin.Context) {
	user := currentUser(c)

	title := c.PostForm("title")
	content := c.PostForm("content")
	category := c.PostForm("category")

	if errs := validatePostInput(title, content, category, false); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	categoryID, _ := primitive.ObjectIDFromHex(category)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var categoryDoc models.Category
	err := database.Categories.FindOne(ctx, bson.M{"_id": categoryID}).Decode(&categoryDoc)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
			{Field: "category", Message: "Category does not exist"},
		}})
		return
	}
	if err != nil {
		logger.S.Errorw("category lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create post"})
		return
	}

	imageURL, ok := uploadFormImage(c, "image", "weblog/posts")
	if !ok {
		return
	}

	now := time.Now()
	post := models.Post{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   sanitize(content),
		Category:  categoryID,
		User:      user.ID,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := database.Posts.InsertOne(ctx, post); err != nil {
		logger.S.Errorw("create post failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create post"})
		return
	}

	populated := populatedPost{Post: post, CategoryDoc: &categoryDoc}
	c.JSON(http.StatusCreated, populated.view())
}

func UpdatePost(c *gin.Context) {
	user := currentUser(c)

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Post ID format"})
		return
	}

	title := c.PostForm("title")
	content := c.PostForm("content")
	category := c.PostForm("category")

	if errs := validatePostInput(title, content, category, true); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	var post models.Post
	err = database.Posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		logger.S.Errorw("update post lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update post"})
		return
	}

	if !isOwner(post.User, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to update this post"})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if title != "" {
		set["title"] = title
	}
	if content != "" {
		set["content"] = sanitize(content)
	}
	if category != "" {
		categoryID, _ := primitive.ObjectIDFromHex(category)
		count, err := database.Categories.CountDocuments(ctx, bson.M{"_id": categoryID})
		if err != nil {
			logger.S.Errorw("category lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update post"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{
				{Field: "category", Message: "Category does not exist"},
			}})
			return
		}
		set["category"] = categoryID
	}

	if newURL, ok := uploadFormImage(c, "image", "weblog/posts"); !ok {
		return
	} else if newURL != "" {
		deleteStoredImage(ctx, post.ImageURL)
		set["imageUrl"] = newURL
	}

	var updated models.Post
	err = database.Posts.FindOneAndUpdate(
		ctx,
		bson.M{"_id": postID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		logger.S.Errorw("update post failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update post"})
		return
	}

	var categoryDoc models.Category
	populated := populatedPost{Post: updated}
	if database.Categories.FindOne(ctx, bson.M{"_id": updated.Category}).Decode(&categoryDoc) == nil {
		populated.CategoryDoc = &categoryDoc
	}
	c.JSON(http.StatusOK, populated.view())
}

func DeletePost(c *gin.Context) {
	user := currentUser(c)

	postID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid Post ID format"})
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
		logger.S.Errorw("delete post lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	if !isOwner(post.User, user.ID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized to delete this post"})
		return
	}

	deleteStoredImage(ctx, post.ImageURL)

	if _, err := database.Posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
		logger.S.Errorw("delete post failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	c.Status(http.StatusNoContent)
}

// uploadFormImage validates and uploads an optional multipart image. The
// second return is false when the request has already been answered with
// an error; an absent file returns ("", true).
func uploadFormImage(c *gin.Context, field, folder string) (string, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", true
	}

	if err := storage.ValidateImage(header); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return "", false
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read uploaded file"})
		return "", false
	}
	defer file.Close()

	url, err := uploads.Upload(c.Request.Context(), file, folder)
	if err != nil {
		logger.S.Errorw("image upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload image"})
		return "", false
	}
	return url, true
}

// deleteStoredImage is best-effort cleanup of a superseded or removed
// object; a failure never fails the surrounding request.
func deleteStoredImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := uploads.Delete(ctx, url); err != nil {
		logger.S.Warnw("stored image cleanup failed", "url", url, "error", err)
	}
}
