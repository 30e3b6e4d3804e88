package server

import (
	"critica/internal/models"
	"critica/internal/repository"
	"critica/internal/service"

	"github.com/gofiber/fiber/v2"
)

// titleRequest is the shared POST/PATCH body for titles. Pointer fields
// distinguish "absent" from "explicitly cleared" on partial updates.
type titleRequest struct {
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genres      *[]string `json:"genre"`
}

func (r titleRequest) toInput() service.TitleInput {
	in := service.TitleInput{
		Name:         r.Name,
		Year:         r.Year,
		Description:  r.Description,
		CategorySlug: r.Category,
	}
	if r.Genres != nil {
		in.GenreSlugs = *r.Genres
	}
	return in
}

// GetTitles handles GET /api/titles with optional category, genre, name and
// year filters. Ratings are aggregated in the listing query.
func (s *Server) GetTitles(c *fiber.Ctx) error {
	p := parsePagination(c)
	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
		Year:         c.QueryInt("year", 0),
	}

	titles, err := s.catalogService.ListTitles(c.Context(), filter, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"titles": titles,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetTitle handles GET /api/titles/:id
func (s *Server) GetTitle(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	title, err := s.catalogService.GetTitle(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(title)
}

// CreateTitle handles POST /api/titles (admin only)
func (s *Server) CreateTitle(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	var req titleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := req.toInput()
	in.Actor = actor
	title, err := s.catalogService.CreateTitle(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(title)
}

// UpdateTitle handles PATCH /api/titles/:id (admin only)
func (s *Server) UpdateTitle(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req titleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := req.toInput()
	in.Actor = actor
	title, err := s.catalogService.UpdateTitle(c.Context(), id, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(title)
}

// DeleteTitle handles DELETE /api/titles/:id (admin only).
// Reviews and their comments go with the title.
func (s *Server) DeleteTitle(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.catalogService.DeleteTitle(c.Context(), actor, id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
