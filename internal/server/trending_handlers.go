package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrending handles GET /api/v1/trending?limit=7
// @Summary Trending hashtags
// @Tags trending
// @Produce json
// @Param limit query int false "Number of hashtags (default 7, max 50)"
// @Success 200 {object} object{success=bool,message=string,hashtags=[]models.Hashtag}
// @Router /trending [get]
func (s *Server) GetTrending(c *fiber.Ctx) error {
	tags, err := s.trending.Top(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"message":  "Here are the trending topics",
		"hashtags": tags,
	})
}
