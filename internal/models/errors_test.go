package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("Text must be longer"), fiber.StatusBadRequest},
		{NewMissingFieldsError("Some of the fields are missing"), fiber.StatusUnprocessableEntity},
		{NewUnsupportedMediaError("File type is not supported"), fiber.StatusNotAcceptable},
		{NewNotFoundError("Tweet not found"), fiber.StatusNotFound},
		{NewUnauthorizedError("Please login to access this resource"), fiber.StatusUnauthorized},
		{NewForbiddenError("You only delete your own tweets"), fiber.StatusForbidden},
		{NewConflictError("Username already exists"), fiber.StatusConflict},
		{NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestIsCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("toggle: %w", NewNotFoundError("Tweet not found"))
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeForbidden))
	assert.False(t, IsCode(errors.New("plain"), CodeNotFound))
}

func TestTweet_MediaRoundTrip(t *testing.T) {
	tw := &Tweet{Text: "hello world"}
	assert.Nil(t, tw.Attachment())

	tw.SetMedia(&Media{PublicID: "abc", URL: "/media/abc.webp", ResourceType: ResourceImage})
	assert.Equal(t, "abc", tw.MediaPublicID)

	tw.Media = nil
	assert.NoError(t, tw.AfterFind(nil))
	assert.Equal(t, ResourceImage, tw.Media.ResourceType)

	tw.SetMedia(nil)
	assert.Nil(t, tw.Attachment())
}
