package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) respondCollection(c *fiber.Ctx, ownerID uint, coll service.Collection, message string) error {
	tweets, err := s.feed.Tweets(c.UserContext(), ownerID, coll, parsePage(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": message, "tweets": tweets})
}

func (s *Server) respondReplies(c *fiber.Ctx, ownerID uint) error {
	replies, err := s.feed.Replies(c.UserContext(), ownerID, parsePage(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "All replies of user fetched", "tweets": replies})
}

// GetMyTweets handles GET /api/v1/me/posts
// @Summary Caller's tweets
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Router /me/posts [get]
func (s *Server) GetMyTweets(c *fiber.Ctx) error {
	return s.respondCollection(c, currentUser(c).ID, service.CollectionTweets, "All Tweets of user fetched successfully")
}

// GetMyLikes handles GET /api/v1/me/likes
// @Summary Tweets the caller liked
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Router /me/likes [get]
func (s *Server) GetMyLikes(c *fiber.Ctx) error {
	return s.respondCollection(c, currentUser(c).ID, service.CollectionLikes, "All liked posts of user fetched")
}

// GetMyRetweets handles GET /api/v1/me/retweets
// @Summary Tweets the caller retweeted
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Router /me/retweets [get]
func (s *Server) GetMyRetweets(c *fiber.Ctx) error {
	return s.respondCollection(c, currentUser(c).ID, service.CollectionRetweets, "All retweets of user fetched")
}

// GetMyReplies handles GET /api/v1/me/replies
// @Summary Caller's replies with the tweets they answer
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]service.ReplyEntry}
// @Router /me/replies [get]
func (s *Server) GetMyReplies(c *fiber.Ctx) error {
	return s.respondReplies(c, currentUser(c).ID)
}

// GetMyFeed handles GET /api/v1/me/feed. It answers 404 unless the
// home_timeline flag is enabled for the caller.
// @Summary Tweets of followed accounts
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Failure 404 {object} models.ErrorResponse
// @Router /me/feed [get]
func (s *Server) GetMyFeed(c *fiber.Ctx) error {
	tweets, err := s.feed.Home(c.UserContext(), currentUser(c).ID, parsePage(c))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Feed fetched successfully", "tweets": tweets})
}

// GetUserTweets handles GET /api/v1/user/tweets/:id
// @Summary A user's tweets
// @Tags feeds
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/tweets/{id} [get]
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.respondCollection(c, ownerID, service.CollectionTweets, "All Tweets of user fetched successfully")
}

// GetUserLikes handles GET /api/v1/user/likes/:id
// @Summary Tweets a user liked
// @Tags feeds
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/likes/{id} [get]
func (s *Server) GetUserLikes(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.respondCollection(c, ownerID, service.CollectionLikes, "All liked posts of user fetched")
}

// GetUserRetweets handles GET /api/v1/user/retweets/:id
// @Summary Tweets a user retweeted
// @Tags feeds
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]models.Tweet}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/retweets/{id} [get]
func (s *Server) GetUserRetweets(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.respondCollection(c, ownerID, service.CollectionRetweets, "All retweets of user fetched")
}

// GetUserReplies handles GET /api/v1/user/replies/:id
// @Summary A user's replies with the tweets they answer
// @Tags feeds
// @Produce json
// @Param id path int true "User ID"
// @Param page query int false "Page index, from 0"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} object{success=bool,message=string,tweets=[]service.ReplyEntry}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/replies/{id} [get]
func (s *Server) GetUserReplies(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return s.respondReplies(c, ownerID)
}
