package repository

import (
	"context"
	"errors"

	"hotorflop/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uint) ([]models.User, error)
	// Search matches usernames containing term, ignoring case, skipping excludeID.
	Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return storeError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, lookupError(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, term string, excludeID uint, limit int) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Where(`LOWER(username) LIKE ? ESCAPE '\'`, containsPattern(term)).
		Where("id <> ?", excludeID).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return nil, models.NewConflictError("Username is already taken")
			}
			return nil, storeError(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}
	return r.GetByID(ctx, id)
}
