package repository

import (
	"context"

	"hotorflop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WishlistRepository defines the interface for saved posts
type WishlistRepository interface {
	Add(ctx context.Context, userID, postID uint) (bool, error)
	Remove(ctx context.Context, userID, postID uint) error
	List(ctx context.Context, userID uint) ([]models.WishlistItem, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, userID, postID uint) (bool, error) {
	item := models.WishlistItem{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if res.Error != nil {
		return false, storeError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, postID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.WishlistItem{})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Wishlist item", postID)
	}
	return nil
}

// List returns saved posts newest first. Items whose post was deleted are skipped.
func (r *wishlistRepository) List(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	items := []models.WishlistItem{}
	live := r.db.Model(&models.Post{}).Select("id")
	if err := r.db.WithContext(ctx).
		Preload("Post").
		Preload("Post.Author").
		Where("user_id = ? AND post_id IN (?)", userID, live).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, storeError(err)
	}
	return items, nil
}
