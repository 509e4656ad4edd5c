package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"unicode/utf8"

	"hotorflop/internal/audience"
	"hotorflop/internal/cache"
	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
)

type PostService struct {
	postRepo   repository.PostRepository
	visibility *VisibilityService
	publisher  notifications.Publisher
	pageSize   int
}

type CreatePostInput struct {
	AuthorID    uint
	Title       string
	Description string
	ImageURL    string
	URL         string
	Category    string
	Price       *float64
	Audience    string
}

type ListAuthorPostsInput struct {
	ViewerID uint
	AuthorID uint
	Cursor   uint
	Limit    int
}

func NewPostService(
	postRepo repository.PostRepository,
	visibility *VisibilityService,
	publisher notifications.Publisher,
	pageSize int,
) *PostService {
	if publisher == nil {
		publisher = notifications.Noop{}
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PostService{postRepo: postRepo, visibility: visibility, publisher: publisher, pageSize: pageSize}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return nil, models.NewValidationError("Description too long (max 5000 characters)")
	}
	a, err := audience.Parse(in.Audience)
	if err != nil {
		return nil, models.NewValidationError("audience must be followers or closeFriends")
	}
	if in.Price != nil && *in.Price < 0 {
		return nil, models.NewValidationError("Price cannot be negative")
	}
	for _, raw := range []string{in.URL, in.ImageURL} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, models.NewValidationError("URLs must be absolute http(s) links")
		}
	}

	post := &models.Post{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    in.ImageURL,
		URL:         in.URL,
		Category:    strings.TrimSpace(in.Category),
		Price:       in.Price,
		AuthorID:    in.AuthorID,
		Audience:    a,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if err := s.publisher.PublishPostCreated(ctx, notifications.PostCreatedEvent{
		PostID:   post.ID,
		AuthorID: post.AuthorID,
		Audience: post.Audience,
	}); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish post event",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	}

	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns a post the viewer may see. Hidden posts are reported as missing.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID uint) (*models.Post, error) {
	return s.visibility.VisiblePost(ctx, s.postRepo, viewerID, postID)
}

// DeletePost removes the user's own post. Posts the user cannot see are NOT_FOUND.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.visibility.VisiblePost(ctx, s.postRepo, userID, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("Only the author can delete this post")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.ResultsKey(postID))
	return nil
}

const maxAuthorPageSize = 100

// ListByAuthor pages through an author's posts, keeping those the viewer may see.
func (s *PostService) ListByAuthor(ctx context.Context, in ListAuthorPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > maxAuthorPageSize {
		limit = maxAuthorPageSize
	}
	posts, err := s.postRepo.ListByAuthor(ctx, in.AuthorID, in.Cursor, limit)
	if err != nil {
		return nil, err
	}
	if in.ViewerID == in.AuthorID {
		return posts, nil
	}
	g, err := s.visibility.Graph(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}
	return audience.Filter(s.visibility.Policy(in.ViewerID), in.ViewerID, posts, subjectOf, g), nil
}
