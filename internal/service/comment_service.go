package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"hotorflop/internal/models"
	"hotorflop/internal/repository"
)

const maxCommentLen = 1000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	visibility  *VisibilityService
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, visibility *VisibilityService) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, visibility: visibility}
}

func (s *CommentService) ListComments(ctx context.Context, viewerID, postID uint) ([]*models.Comment, error) {
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, viewerID, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, in.UserID, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{Content: content, PostID: in.PostID, UserID: in.UserID}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment lets the comment's author or the post's author remove it.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post.AuthorID != userID {
			return models.NewForbiddenError("Not authorized to delete this comment")
		}
	}
	return s.commentRepo.Delete(ctx, commentID)
}
