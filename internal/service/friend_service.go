package service

import (
	"context"

	"hotorflop/internal/models"
	"hotorflop/internal/repository"
)

// FriendService manages following and close-friend edges.
type FriendService struct {
	relRepo    repository.RelationshipRepository
	userRepo   repository.UserRepository
	visibility *VisibilityService
}

// NewFriendService returns a new FriendService.
func NewFriendService(relRepo repository.RelationshipRepository, userRepo repository.UserRepository, visibility *VisibilityService) *FriendService {
	return &FriendService{relRepo: relRepo, userRepo: userRepo, visibility: visibility}
}

// Follow makes userID follow targetID.
func (s *FriendService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	created, err := s.relRepo.Follow(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !created {
		return models.NewConflictError("You already follow this user")
	}
	s.visibility.Invalidate(ctx, userID, targetID)
	return nil
}

// Unfollow removes the edge, including any close-friend mark on it.
func (s *FriendService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if err := s.relRepo.Unfollow(ctx, userID, targetID); err != nil {
		return err
	}
	s.visibility.Invalidate(ctx, userID, targetID)
	return nil
}

// SetCloseFriend toggles whether userID counts targetID as a close friend.
// userID must already follow targetID.
func (s *FriendService) SetCloseFriend(ctx context.Context, userID, targetID uint, close bool) error {
	if userID == targetID {
		return models.NewValidationError("You cannot mark yourself as a close friend")
	}
	if err := s.relRepo.SetCloseFriend(ctx, userID, targetID, close); err != nil {
		return err
	}
	s.visibility.Invalidate(ctx, userID, targetID)
	return nil
}

func (s *FriendService) Following(ctx context.Context, userID uint) ([]models.Relationship, error) {
	return s.relRepo.Following(ctx, userID)
}

func (s *FriendService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.relRepo.Followers(ctx, userID)
}

func (s *FriendService) CloseFriends(ctx context.Context, userID uint) ([]models.Relationship, error) {
	return s.relRepo.CloseFriends(ctx, userID)
}
