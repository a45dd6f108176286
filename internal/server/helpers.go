package server

import (
	"io"
	"strings"
	"time"

	"chirp/internal/models"
	"chirp/internal/service"
	"chirp/internal/storage"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = service.MaxPageLimit
)

// parseID extracts a route parameter by name as a positive uint.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + param)
	}
	return uint(id), nil
}

// parsePage reads the page and limit query parameters.
func parsePage(c *fiber.Ctx) service.Page {
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	if page > service.MaxPage {
		page = service.MaxPage
	}
	return service.Page{Page: page, Limit: limit}
}

// readUpload returns the first multipart file found under one of fields,
// or nil when the request carries none.
func readUpload(c *fiber.Ctx, fields ...string) (*storage.UploadInput, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}
	for _, field := range fields {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return nil, models.NewValidationError("Could not read uploaded file")
		}
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, models.NewValidationError("Could not read uploaded file")
		}
		return &storage.UploadInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     content,
		}, nil
	}
	return nil, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
