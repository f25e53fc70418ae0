package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fieldsOf(errs []FieldError) []string {
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	return fields
}

func TestValidatePostInputCreate(t *testing.T) {
	validCategory := primitive.NewObjectID().Hex()

	tests := []struct {
		name      string
		title     string
		content   string
		category  string
		badFields []string
	}{
		{"valid", "Hello World!!", "0123456789", validCategory, nil},
		{"all missing", "", "", "", []string{"title", "content", "category"}},
		{"title too short", "Hi", "0123456789", validCategory, []string{"title"}},
		{"title too long", strings.Repeat("a", 201), "0123456789", validCategory, []string{"title"}},
		{"content too short", "Hello World!!", "short", validCategory, []string{"content"}},
		{"bad category id", "Hello World!!", "0123456789", "not-an-object-id", []string{"category"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validatePostInput(tt.title, tt.content, tt.category, false)
			assert.ElementsMatch(t, tt.badFields, fieldsOf(errs))
		})
	}
}

func TestValidatePostInputPartialAllowsOmission(t *testing.T) {
	errs := validatePostInput("", "", "", true)
	assert.Empty(t, errs)

	// Provided-but-invalid fields still fail on update.
	errs = validatePostInput("Hi", "", "", true)
	assert.Equal(t, []string{"title"}, fieldsOf(errs))
}

func TestIsOwner(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.True(t, isOwner(a, a))
	assert.False(t, isOwner(a, b))
}
