package service

import (
	"context"

	"hotorflop/internal/models"
	"hotorflop/internal/repository"
)

type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	postRepo     repository.PostRepository
	visibility   *VisibilityService
}

func NewWishlistService(wishlistRepo repository.WishlistRepository, postRepo repository.PostRepository, visibility *VisibilityService) *WishlistService {
	return &WishlistService{wishlistRepo: wishlistRepo, postRepo: postRepo, visibility: visibility}
}

// Add saves a visible post. Saving twice is a conflict.
func (s *WishlistService) Add(ctx context.Context, userID, postID uint) error {
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, userID, postID); err != nil {
		return err
	}
	added, err := s.wishlistRepo.Add(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !added {
		return models.NewConflictError("Post already in wishlist")
	}
	return nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, postID uint) error {
	return s.wishlistRepo.Remove(ctx, userID, postID)
}

// List returns saved posts the user can still see.
func (s *WishlistService) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items, err := s.wishlistRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	g, err := s.visibility.Graph(ctx, userID)
	if err != nil {
		return nil, err
	}
	policy := s.visibility.Policy(userID)
	out := items[:0]
	for _, item := range items {
		if policy.CanView(userID, item.Post.Subject(), g) {
			out = append(out, item)
		}
	}
	return out, nil
}
