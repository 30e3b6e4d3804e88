package server

import (
	"critica/internal/models"
	"critica/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	p := parsePagination(c)
	categories, err := s.catalogService.ListCategories(c.Context(), c.Query("search"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"categories": categories,
		"limit":      p.Limit,
		"offset":     p.Offset,
	})
}

// CreateCategory handles POST /api/categories (admin only)
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.catalogService.CreateCategory(c.Context(), service.TaxonomyInput{
		Actor: actor,
		Name:  req.Name,
		Slug:  req.Slug,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/categories/:slug (admin only).
// Titles in the category survive with a null category.
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	if err := s.catalogService.DeleteCategory(c.Context(), actor, c.Params("slug")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
