package repository

import (
	"context"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationshipRepository defines the interface for following and close-friend edges.
type RelationshipRepository interface {
	// Follow creates userID -> friendID. It reports false when the edge already existed.
	Follow(ctx context.Context, userID, friendID uint) (bool, error)
	Unfollow(ctx context.Context, userID, friendID uint) error
	SetCloseFriend(ctx context.Context, userID, friendID uint, close bool) error
	Following(ctx context.Context, userID uint) ([]models.Relationship, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	CloseFriends(ctx context.Context, userID uint) ([]models.Relationship, error)
	Graph(ctx context.Context, viewerID uint) (audience.Graph, error)
}

type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) Follow(ctx context.Context, userID, friendID uint) (bool, error) {
	rel := models.Relationship{UserID: userID, FriendID: friendID}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rel)
	if res.Error != nil {
		return false, storeError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *relationshipRepository) Unfollow(ctx context.Context, userID, friendID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Relationship", friendID)
	}
	return nil
}

func (r *relationshipRepository) SetCloseFriend(ctx context.Context, userID, friendID uint, close bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Relationship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Update("close_friend", close)
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Relationship", friendID)
	}
	return nil
}

func (r *relationshipRepository) Following(ctx context.Context, userID uint) ([]models.Relationship, error) {
	rels := []models.Relationship{}
	if err := r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rels).Error; err != nil {
		return nil, storeError(err)
	}
	return rels, nil
}

func (r *relationshipRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Joins("JOIN relationships rel ON rel.user_id = users.id").
		Where("rel.friend_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (r *relationshipRepository) CloseFriends(ctx context.Context, userID uint) ([]models.Relationship, error) {
	rels := []models.Relationship{}
	if err := r.db.WithContext(ctx).
		Preload("Friend").
		Where("user_id = ? AND close_friend = ?", userID, true).
		Order("created_at DESC").
		Find(&rels).Error; err != nil {
		return nil, storeError(err)
	}
	return rels, nil
}

// Graph loads the three edge sets visibility decisions need for viewerID.
func (r *relationshipRepository) Graph(ctx context.Context, viewerID uint) (audience.Graph, error) {
	var edges []models.Relationship
	if err := r.db.WithContext(ctx).
		Select("user_id", "friend_id", "close_friend").
		Where("user_id = ? OR (friend_id = ? AND close_friend = ?)", viewerID, viewerID, true).
		Find(&edges).Error; err != nil {
		return audience.Graph{}, storeError(err)
	}

	var following, closeOf, markedClose []uint
	for _, e := range edges {
		if e.UserID == viewerID {
			following = append(following, e.FriendID)
			if e.CloseFriend {
				markedClose = append(markedClose, e.FriendID)
			}
		}
		if e.FriendID == viewerID && e.CloseFriend {
			closeOf = append(closeOf, e.UserID)
		}
	}
	return audience.NewGraph(following, closeOf, markedClose), nil
}
