package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const defaultSearchLimit = 10

// GetUserDetails handles GET /api/v1/user/:username
// @Summary Public profile
// @Description Returns a profile with its relationship collections and counts the view
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{success=bool,user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/{username} [get]
func (s *Server) GetUserDetails(c *fiber.Ctx) error {
	user, err := s.accounts.GetUserDetails(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"user": user})
}

// GetBasicUserDetails handles GET /api/v1/user/basic/:username
// @Summary Basic public profile
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} object{success=bool,user=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /user/basic/{username} [get]
func (s *Server) GetBasicUserDetails(c *fiber.Ctx) error {
	user, err := s.accounts.GetBasicUserDetails(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"user": user})
}

// SearchUsers handles GET /api/v1/user?keyword=&limit=
// @Summary Search users by username, name or bio
// @Tags users
// @Produce json
// @Param keyword query string false "Search text"
// @Param limit query int false "Number of users"
// @Success 200 {object} object{success=bool,users=[]models.User,num_users=int}
// @Router /user [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultSearchLimit
	}
	users, err := s.accounts.Search(c.UserContext(), c.Query("keyword"), limit)
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"users":     users,
		"num_users": len(users),
	})
}

// Follow handles PATCH /api/v1/follow/:id
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /follow/{id} [patch]
func (s *Server) Follow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.interactions.Follow(c.UserContext(), currentUser(c).ID, targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "User followed successfully"})
}

// Unfollow handles PATCH /api/v1/unfollow/:id
// @Summary Unfollow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /unfollow/{id} [patch]
func (s *Server) Unfollow(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.interactions.Unfollow(c.UserContext(), currentUser(c).ID, targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "User unfollowed successfully"})
}
