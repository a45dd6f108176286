package server

import (
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllUsers handles GET /api/v1/admin/users
// @Summary List all users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,users=[]models.User,num_users=int}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users [get]
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	users, err := s.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"users":     users,
		"num_users": len(users),
	})
}

// AdminDeleteUser handles DELETE /api/v1/admin/user/:id
// @Summary Delete a user and their content
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/user/{id} [delete]
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.admin.DeleteUser(c.UserContext(), targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "User deleted successfully"})
}

// GiveTick handles PATCH /api/v1/admin/givetick/:id
// @Summary Grant a verification tick
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{type=string} false "Verification type"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/givetick/{id} [patch]
func (s *Server) GiveTick(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req struct {
		Type string `json:"type" form:"type"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := s.admin.GiveTick(c.UserContext(), targetID, req.Type); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "User is now verified"})
}

// RemoveTick handles PATCH /api/v1/admin/removetick/:id
// @Summary Remove a verification tick
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/removetick/{id} [patch]
func (s *Server) RemoveTick(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.admin.RemoveTick(c.UserContext(), targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Verified tick removed"})
}

// MakeAdmin handles PATCH /api/v1/admin/user/makeadmin/:id
// @Summary Promote a user to admin
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/user/makeadmin/{id} [patch]
func (s *Server) MakeAdmin(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.admin.MakeAdmin(c.UserContext(), targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "User is now an admin"})
}

// RevokeAdmin handles PATCH /api/v1/admin/user/revokeadmin/:id (owner only)
// @Summary Demote an admin (owner only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/user/revokeadmin/{id} [patch]
func (s *Server) RevokeAdmin(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.admin.RevokeAdmin(c.UserContext(), targetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Admin rights revoked"})
}

// AdminDeleteTweet handles DELETE /api/v1/admin/tweet/:id
// @Summary Delete any tweet
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tweet ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/tweet/{id} [delete]
func (s *Server) AdminDeleteTweet(c *fiber.Ctx) error {
	tweetID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.interactions.AdminDeleteTweet(c.UserContext(), tweetID); err != nil {
		return err
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"message": "Tweet deleted successfully"})
}

// GetFeatureFlags handles GET /api/v1/admin/feature-flags
// @Summary Configured and effective feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{success=bool,configured=map[string]string,effective=map[string]bool}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"configured": s.featureFlags.Raw(),
		"effective":  s.featureFlags.Snapshot(currentUser(c).ID),
	})
}
