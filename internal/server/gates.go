package server

import (
	"strings"

	"chirp/internal/auth"
	"chirp/internal/middleware"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

const tokenCookie = "token"

// AuthRequired resolves the request token to a user once and stores the
// user, its claims and its id in locals for later handlers and gates.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, user, err := s.accounts.ResolveSession(c.UserContext(), requestToken(c))
		if err != nil {
			return err
		}

		c.Locals("user", user)
		c.Locals("claims", claims)
		c.Locals("userID", user.ID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// Require admits the request only when the resolved user passes every
// predicate. It must run after AuthRequired.
func (s *Server) Require(preds ...auth.Predicate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.Check(currentUser(c), preds...); err != nil {
			return err
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals("user").(*models.User)
	return u
}

func currentClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}

// requestToken reads the session token from the cookie, falling back to a
// bearer Authorization header.
func requestToken(c *fiber.Ctx) string {
	if tok := c.Cookies(tokenCookie); tok != "" {
		return tok
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
