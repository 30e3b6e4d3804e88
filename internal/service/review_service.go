package service

import (
	"context"
	"fmt"

	"critica/internal/access"
	"critica/internal/cache"
	"critica/internal/models"
	"critica/internal/observability"
	"critica/internal/repository"
)

// ReviewService manages reviews under titles. One review per author per
// title; the database index is the final arbiter under races.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	ratings    *cache.RatingCache
}

// ReviewInput creates or updates a review.
type ReviewInput struct {
	Actor access.Actor
	Text  string
	Score int
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	titleRepo repository.TitleRepository,
	ratings *cache.RatingCache,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
	}
}

func validateReview(text string, score int) error {
	if text == "" {
		return models.NewFieldValidationError("text", "Text is required")
	}
	if score < models.MinScore || score > models.MaxScore {
		return models.NewFieldValidationError("score",
			fmt.Sprintf("Score must be between %d and %d", models.MinScore, models.MaxScore))
	}
	return nil
}

// CreateReview posts a review on a title. Each author gets exactly one
// review per title; a second attempt is rejected as a conflict.
func (s *ReviewService) CreateReview(ctx context.Context, titleID uint, in ReviewInput) (*models.Review, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Content, Kind: access.Create}); err != nil {
		return nil, err
	}
	if err := validateReview(in.Text, in.Score); err != nil {
		return nil, err
	}
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}

	existing, err := s.reviewRepo.GetByAuthorAndTitle(ctx, in.Actor.ID, titleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("title", "You have already reviewed this title")
	}

	review := &models.Review{
		AuthorID: in.Actor.ID,
		TitleID:  titleID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	observability.ReviewsCreatedTotal.Inc()
	s.ratings.Invalidate(ctx, titleID)
	return s.reviewRepo.GetByID(ctx, titleID, review.ID)
}

// ListReviews returns a title's reviews, oldest first.
func (s *ReviewService) ListReviews(ctx context.Context, titleID uint, limit, offset int) ([]*models.Review, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByTitle(ctx, titleID, limit, offset)
}

// GetReview returns a single review scoped to its title.
func (s *ReviewService) GetReview(ctx context.Context, titleID, id uint) (*models.Review, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, titleID, id)
}

// UpdateReview edits text and score. Authors edit their own reviews;
// moderators and admins edit anyone's. Publication date never changes.
func (s *ReviewService) UpdateReview(ctx context.Context, titleID, id uint, in ReviewInput) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	action := access.Action{
		Resource: access.Content,
		Kind:     access.WriteObject,
		Owned:    review.AuthorID == in.Actor.ID,
	}
	if err := access.Decide(in.Actor, action); err != nil {
		return nil, err
	}
	if err := validateReview(in.Text, in.Score); err != nil {
		return nil, err
	}

	review.Text = in.Text
	review.Score = in.Score
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.ratings.Invalidate(ctx, titleID)
	return s.reviewRepo.GetByID(ctx, titleID, id)
}

// DeleteReview removes a review and its comments.
func (s *ReviewService) DeleteReview(ctx context.Context, actor access.Actor, titleID, id uint) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, id)
	if err != nil {
		return err
	}
	action := access.Action{
		Resource: access.Content,
		Kind:     access.WriteObject,
		Owned:    review.AuthorID == actor.ID,
	}
	if err := access.Decide(actor, action); err != nil {
		return err
	}

	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, titleID)
	return nil
}
