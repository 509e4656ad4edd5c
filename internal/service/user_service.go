package service

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"hotorflop/internal/cache"
	"hotorflop/internal/models"
	"hotorflop/internal/repository"
)

const (
	maxUserSearchLen    = 50
	userSearchLimit     = 20
	maxNameLen          = 100
	maxProfilePicURLLen = 2048
	minUsernameLen      = 3
	maxUsernameLen      = 30
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the fields a user may change; nil leaves a field as is.
type UpdateProfileInput struct {
	UserID     uint
	Name       *string
	Username   *string
	ProfilePic *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetUser returns a profile through the user cache.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	u, _, err := cache.Aside(ctx, cache.UserKey(id), cache.UserTTL, func(ctx context.Context) (*models.User, error) {
		return s.userRepo.GetByID(ctx, id)
	})
	return u, err
}

// GetProfile is another user's profile as viewerID sees it: without email.
func (s *UserService) GetProfile(ctx context.Context, viewerID, id uint) (*models.User, error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID == id {
		return u, nil
	}
	public := *u
	public.Email = ""
	return &public, nil
}

// SearchUsers finds people by username so they can be followed or messaged.
func (s *UserService) SearchUsers(ctx context.Context, viewerID uint, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.NewValidationError("Search term is required")
	}
	if utf8.RuneCountInString(term) > maxUserSearchLen {
		return nil, models.NewValidationError("Search term too long (max 50 characters)")
	}
	users, err := s.userRepo.Search(ctx, term, viewerID, userSearchLimit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Email = ""
	}
	return users, nil
}

// UpdateProfile changes the caller's name, username or picture.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	fields := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if utf8.RuneCountInString(name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 100 characters)")
		}
		fields["name"] = name
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		n := utf8.RuneCountInString(username)
		if n < minUsernameLen || n > maxUsernameLen {
			return nil, models.NewValidationError("Username must be 3 to 30 characters")
		}
		if !usernamePattern.MatchString(username) {
			return nil, models.NewValidationError("Username may only contain letters, digits, '_' and '.'")
		}
		existing, err := s.userRepo.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != in.UserID:
			return nil, models.NewConflictError("Username is already taken")
		case err != nil && models.ErrorCode(err) != models.CodeNotFound:
			return nil, err
		}
		fields["username"] = username
	}

	if in.ProfilePic != nil {
		pic := strings.TrimSpace(*in.ProfilePic)
		if pic != "" {
			u, err := url.Parse(pic)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(pic) > maxProfilePicURLLen {
				return nil, models.NewValidationError("Profile picture must be an absolute http(s) link")
			}
		}
		fields["profile_pic"] = pic
	}

	u, err := s.userRepo.UpdateProfile(ctx, in.UserID, fields)
	if err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.UserKey(in.UserID))
	return u, nil
}

// IsAdmin reports whether userID holds the admin flag. It skips the cache so
// a revoked flag takes effect at once.
func (s *UserService) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}
