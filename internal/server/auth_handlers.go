package server

import (
	"critica/internal/middleware"
	"critica/internal/models"
	"critica/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup.
// Repeating the same (username, email) pair is not an error: the identity is
// reused and a fresh confirmation code is mailed, superseding earlier ones.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Signup(c.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	body := fiber.Map{
		"username": result.User.Username,
		"email":    result.User.Email,
	}

	// The identity is persisted even when the mail could not go out. The
	// caller has to know the code is not on its way.
	if !result.Delivered {
		middleware.Logger.WarnContext(c.UserContext(),
			"confirmation mail not delivered, signup degraded",
			"username", result.User.Username)
		body["mail_delivered"] = false
		body["warning"] = "Confirmation code could not be delivered, retry signup later"
	}

	return c.Status(fiber.StatusOK).JSON(body)
}

// ExchangeToken handles POST /api/auth/token. A valid (username, code) pair
// yields a bearer token; the code itself is never invalidated by use.
func (s *Server) ExchangeToken(c *fiber.Ctx) error {
	var req struct {
		Username         string `json:"username"`
		ConfirmationCode string `json:"confirmation_code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.ExchangeToken(c.Context(), service.ExchangeInput{
		Username:         req.Username,
		ConfirmationCode: req.ConfirmationCode,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}
