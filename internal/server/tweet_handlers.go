package server

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type tweetRequest struct {
	Text         string `json:"text" form:"text"`
	ResourceType string `json:"resourceType" form:"resourceType"`
}

// readTweetRequest parses the text fields and the optional attachment.
func readTweetRequest(c *fiber.Ctx) (tweetRequest, *service.Attachment, error) {
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return req, nil, err
	}
	file, err := readUpload(c, "file")
	if err != nil || file == nil {
		return req, nil, err
	}
	return req, &service.Attachment{File: *file, ResourceType: req.ResourceType}, nil
}

// CreateTweet handles POST /api/v1/tweet
// @Summary Create a tweet
// @Tags tweets
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param text formData string true "Tweet text"
// @Param resourceType formData string false "image or video, required with file"
// @Param file formData file false "Attachment"
// @Success 201 {object} object{success=bool,message=string,tweet=models.Tweet}
// @Failure 400 {object} models.ErrorResponse
// @Router /tweet [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	req, attachment, err := readTweetRequest(c)
	if err != nil {
		return err
	}
	tweet, err := s.interactions.CreateTweet(c.UserContext(), service.TweetInput{
		AuthorID:   currentUser(c).ID,
		Text:       req.Text,
		Attachment: attachment,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, fiber.Map{
		"message": "Tweet created successfully",
		"tweet":   tweet,
	})
}

// GetTweet handles GET /api/v1/tweet/:id
// @Summary Get a tweet
// @Tags tweets
// @Produce json
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,tweet=models.Tweet}
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/{id} [get]
func (s *Server) GetTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	tweet, err := s.interactions.GetTweet(c.UserContext(), tweetID)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"tweet": tweet})
}

// ReplyTweet handles POST /api/v1/tweet/:id
// @Summary Reply to a tweet
// @Tags tweets
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent tweet ID"
// @Param text formData string true "Reply text"
// @Param resourceType formData string false "image or video, required with file"
// @Param file formData file false "Attachment"
// @Success 201 {object} object{success=bool,message=string,tweet=models.Tweet}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/{id} [post]
func (s *Server) ReplyTweet(c *fiber.Ctx) error {
	parentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, attachment, err := readTweetRequest(c)
	if err != nil {
		return err
	}
	reply, err := s.interactions.CreateReply(c.UserContext(), parentID, service.TweetInput{
		AuthorID:   currentUser(c).ID,
		Text:       req.Text,
		Attachment: attachment,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusCreated, fiber.Map{
		"message": "Replied to tweet successfully",
		"reply":   reply,
	})
}

// UpdateTweet handles PATCH /api/v1/tweet/:id. Only subscribed users reach it.
// @Summary Edit a tweet (subscribed users only)
// @Tags tweets
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Param text formData string true "Tweet text"
// @Param resourceType formData string false "image or video, required with file"
// @Param file formData file false "Attachment"
// @Success 200 {object} object{success=bool,message=string,tweet=models.Tweet}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/{id} [patch]
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, attachment, err := readTweetRequest(c)
	if err != nil {
		return err
	}
	tweet, err := s.interactions.UpdateTweet(c.UserContext(), service.UpdateTweetInput{
		UserID:     currentUser(c).ID,
		TweetID:    tweetID,
		Text:       req.Text,
		Attachment: attachment,
	})
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"message": "Tweet updated successfully",
		"tweet":   tweet,
	})
}

// DeleteTweet handles DELETE /api/v1/tweet/:id
// @Summary Delete the caller's tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/{id} [delete]
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.interactions.DeleteTweet(c.UserContext(), currentUser(c).ID, tweetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Tweet deleted successfully"})
}

// ToggleLike handles PATCH /api/v1/tweet/like/:id
// @Summary Like or unlike a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/like/{id} [patch]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	return s.toggle(c, s.interactions.ToggleLike, "Tweet liked successfully", "Tweet unliked successfully")
}

// ToggleBookmark handles PATCH /api/v1/tweet/bookmark/:id
// @Summary Bookmark or unbookmark a tweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/bookmark/{id} [patch]
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	return s.toggle(c, s.interactions.ToggleBookmark,
		"Tweet added to bookmarks successfully", "Tweet removed from bookmarks successfully")
}

// ToggleRetweet handles PATCH /api/v1/tweet/retweet/:id
// @Summary Retweet or undo a retweet
// @Tags tweets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /tweet/retweet/{id} [patch]
func (s *Server) ToggleRetweet(c *fiber.Ctx) error {
	return s.toggle(c, s.interactions.ToggleRetweet, "Retweeted successfully", "Tweet removed from retweets successfully")
}

func (s *Server) toggle(c *fiber.Ctx, fn func(context.Context, uint, uint) (bool, error), added, removed string) error {
	tweetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	on, err := fn(c.UserContext(), currentUser(c).ID, tweetID)
	if err != nil {
		return err
	}
	message := removed
	if on {
		message = added
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": message})
}
