package service

import (
	"context"

	"critica/internal/access"
	"critica/internal/models"
	"critica/internal/repository"
)

// CommentService manages comments under reviews.
type CommentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

// CommentInput creates or updates a comment.
type CommentInput struct {
	Actor access.Actor
	Text  string
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

// CreateComment posts a comment on a review.
func (s *CommentService) CreateComment(ctx context.Context, reviewID uint, in CommentInput) (*models.Comment, error) {
	if err := access.Decide(in.Actor, access.Action{Resource: access.Content, Kind: access.Create}); err != nil {
		return nil, err
	}
	if in.Text == "" {
		return nil, models.NewFieldValidationError("text", "Text is required")
	}
	if _, err := s.reviewRepo.Get(ctx, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AuthorID: in.Actor.ID,
		ReviewID: reviewID,
		Text:     in.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, reviewID, comment.ID)
}

// ListComments returns a review's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, reviewID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.reviewRepo.Get(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByReview(ctx, reviewID, limit, offset)
}

// GetComment returns a single comment scoped to its review.
func (s *CommentService) GetComment(ctx context.Context, reviewID, id uint) (*models.Comment, error) {
	if _, err := s.reviewRepo.Get(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, reviewID, id)
}

// UpdateComment edits the comment text. Authors edit their own comments;
// moderators and admins edit anyone's.
func (s *CommentService) UpdateComment(ctx context.Context, reviewID, id uint, in CommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, reviewID, id)
	if err != nil {
		return nil, err
	}
	action := access.Action{
		Resource: access.Content,
		Kind:     access.WriteObject,
		Owned:    comment.AuthorID == in.Actor.ID,
	}
	if err := access.Decide(in.Actor, action); err != nil {
		return nil, err
	}
	if in.Text == "" {
		return nil, models.NewFieldValidationError("text", "Text is required")
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, reviewID, id)
}

// DeleteComment removes a comment.
func (s *CommentService) DeleteComment(ctx context.Context, actor access.Actor, reviewID, id uint) error {
	comment, err := s.commentRepo.GetByID(ctx, reviewID, id)
	if err != nil {
		return err
	}
	action := access.Action{
		Resource: access.Content,
		Kind:     access.WriteObject,
		Owned:    comment.AuthorID == actor.ID,
	}
	if err := access.Decide(actor, action); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, id)
}
