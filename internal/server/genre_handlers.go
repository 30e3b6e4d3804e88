package server

import (
	"critica/internal/models"
	"critica/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetGenres handles GET /api/genres
func (s *Server) GetGenres(c *fiber.Ctx) error {
	p := parsePagination(c)
	genres, err := s.catalogService.ListGenres(c.Context(), c.Query("search"), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"genres": genres,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// CreateGenre handles POST /api/genres (admin only)
func (s *Server) CreateGenre(c *fiber.Ctx) error {
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

	genre, err := s.catalogService.CreateGenre(c.Context(), service.TaxonomyInput{
		Actor: actor,
		Name:  req.Name,
		Slug:  req.Slug,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(genre)
}

// DeleteGenre handles DELETE /api/genres/:slug (admin only).
// Titles tagged with the genre survive; the link rows lose the genre.
func (s *Server) DeleteGenre(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	if err := s.catalogService.DeleteGenre(c.Context(), actor, c.Params("slug")); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
