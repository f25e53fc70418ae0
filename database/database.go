package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"weblog/config"
	"weblog/logger"
	"weblog/models"
)

var Client *mongo.Client
var Users *mongo.Collection
var Posts *mongo.Collection
var Comments *mongo.Collection
var Categories *mongo.Collection
var Notifications *mongo.Collection

// Connect establishes the MongoDB connection and binds the collection
// handles. It retries a few times so the server survives a store that is
// still coming up.
func Connect(cfg *config.AppConfig) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		if err = connect(cfg); err == nil {
			return nil
		}
		logger.S.Warnw("mongodb connection attempt failed", "attempt", attempt, "error", err)
		time.Sleep(2 * time.Second)
	}
	return err
}

func connect(cfg *config.AppConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return err
	}

	if err := Client.Ping(ctx, nil); err != nil {
		return err
	}

	db := Client.Database(cfg.MongoDB)
	Users = db.Collection("users")
	Posts = db.Collection("posts")
	Comments = db.Collection("comments")
	Categories = db.Collection("categories")
	Notifications = db.Collection("notifications")

	logger.S.Info("connected to MongoDB")
	return nil
}

// EnsureIndexes creates the unique indexes the data model relies on.
func EnsureIndexes(ctx context.Context) error {
	_, err := Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}

	_, err = Categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

var defaultCategories = []string{
	"Technology", "Lifestyle", "Travel", "Food", "Music", "Other",
}

// SeedCategories inserts the default category set when the collection is
// empty. Categories are read-only through the API.
func SeedCategories(ctx context.Context) error {
	count, err := Categories.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	docs := make([]interface{}, len(defaultCategories))
	for i, name := range defaultCategories {
		docs[i] = models.Category{ID: primitive.NewObjectID(), Name: name}
	}
	_, err = Categories.InsertMany(ctx, docs)
	if err == nil {
		logger.S.Infow("seeded categories", "count", len(docs))
	}
	return err
}

// FindUserByID resolves a user document by its ObjectID. Returns
// mongo.ErrNoDocuments when the account no longer exists.
func FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := Users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// NotificationStore adapts the notifications collection to the
// notifications.Store interface.
type NotificationStore struct{}

func (NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := Notifications.InsertOne(ctx, n)
	return err
}

// Disconnect closes the client connection.
func Disconnect() error {
	if Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return Client.Disconnect(ctx)
}
