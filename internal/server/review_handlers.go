package server

import (
	"critica/internal/models"
	"critica/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetReviews handles GET /api/titles/:id/reviews
func (s *Server) GetReviews(c *fiber.Ctx) error {
	titleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c)
	reviews, err := s.reviewService.ListReviews(c.Context(), titleID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"reviews": reviews,
		"limit":   p.Limit,
		"offset":  p.Offset,
	})
}

// GetReview handles GET /api/titles/:id/reviews/:reviewId
func (s *Server) GetReview(c *fiber.Ctx) error {
	titleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reviewID, err := s.parseID(c, "reviewId")
	if err != nil {
		return nil
	}

	review, err := s.reviewService.GetReview(c.Context(), titleID, reviewID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(review)
}

// CreateReview handles POST /api/titles/:id/reviews. A second review by
// the same author on the same title is rejected with 409.
func (s *Server) CreateReview(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	titleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text  string `json:"text"`
		Score int    `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.CreateReview(c.Context(), titleID, service.ReviewInput{
		Actor: actor,
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// UpdateReview handles PATCH /api/titles/:id/reviews/:reviewId
func (s *Server) UpdateReview(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	titleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reviewID, err := s.parseID(c, "reviewId")
	if err != nil {
		return nil
	}

	var req struct {
		Text  string `json:"text"`
		Score int    `json:"score"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.UpdateReview(c.Context(), titleID, reviewID, service.ReviewInput{
		Actor: actor,
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(review)
}

// DeleteReview handles DELETE /api/titles/:id/reviews/:reviewId
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	actor, err := s.currentActor(c)
	if err != nil {
		return nil
	}

	titleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reviewID, err := s.parseID(c, "reviewId")
	if err != nil {
		return nil
	}

	if err := s.reviewService.DeleteReview(c.Context(), actor, titleID, reviewID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
