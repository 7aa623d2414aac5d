package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type AddCommentInput struct {
	AuthorID uint
	PostID   uint
	Text     string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// AddComment appends a comment to an existing post.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	if errs := (validation.CommentForm{Text: in.Text}).Validate(); !errs.Empty() {
		return nil, models.NewFieldValidationError(errs)
	}

	comment := &models.Comment{
		Text:     in.Text,
		PostID:   in.PostID,
		AuthorID: in.AuthorID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
