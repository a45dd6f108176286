package server

import (
	"errors"

	"chirp/internal/middleware"
	"chirp/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorHandler is the Fiber ErrorHandler. Handlers return service errors
// and this writes the failure envelope for them.
func errorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == models.CodeInternal {
			middleware.Logger.ErrorContext(c.UserContext(), "request failed with internal error",
				"path", c.Path(), "error", err)
		}
		return models.RespondWithError(c, appErr.HTTPStatus(), appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		code := models.CodeValidation
		switch {
		case status == fiber.StatusNotFound:
			code = models.CodeNotFound
		case status >= fiber.StatusInternalServerError:
			code = models.CodeInternal
		}
		return models.RespondWithError(c, status, &models.AppError{Code: code, Message: fiberErr.Message, Status: status})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}
