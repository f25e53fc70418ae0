package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"weblog/config"
	"weblog/middleware"
	"weblog/models"
	"weblog/notifications"
	"weblog/storage"
	"weblog/token"
)

// Collaborators shared across all handler files, wired once at boot.
var (
	tokenIssuer  *token.Issuer
	uploads      storage.Uploader
	notifyEngine *notifications.Engine
	sanitizer    = bluemonday.UGCPolicy()
)

// Init wires the handler package's collaborators. Tests call it with
// fakes; main calls it with the real Cloudinary uploader and the mongo
// backed notification store.
func Init(cfg *config.AppConfig, up storage.Uploader, engine *notifications.Engine) {
	tokenIssuer = token.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	uploads = up
	notifyEngine = engine
}

// currentUser returns the identity resolved by the auth middleware.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// isOwner compares a resource's stored owner reference against the
// caller's ID. Stringified exact equality, re-checked on every mutation.
func isOwner(owner, caller primitive.ObjectID) bool {
	return owner.Hex() == caller.Hex()
}

// FieldError is a single field-level validation failure, returned to the
// client as {"errors": [...]}.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func sanitize(s string) string {
	return sanitizer.Sanitize(s)
}
