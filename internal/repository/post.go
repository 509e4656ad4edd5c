package repository

import (
	"context"

	"hotorflop/internal/models"
	"hotorflop/internal/tally"

	"gorm.io/gorm"
)

// FeedQuery selects feed candidates before visibility filtering.
type FeedQuery struct {
	// AuthorIDs limits candidates to these authors. Empty means no candidates.
	AuthorIDs []uint
	// ViewerID is excluded as an author, and posts they voted on are skipped.
	ViewerID uint
	// BeforeID is the pagination cursor; zero starts from the newest post.
	BeforeID uint
	Limit    int
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, beforeID uint, limit int) ([]*models.Post, error)
	ListFeedCandidates(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	RandomCandidates(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	ListIDs(ctx context.Context) ([]uint, error)
	SetCounts(ctx context.Context, id uint, c tally.Counts) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.SetCounts(tally.Counts{})
	return storeError(r.db.WithContext(ctx).Create(post).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, beforeID uint, limit int) ([]*models.Post, error) {
	posts := []*models.Post{}
	q := r.db.WithContext(ctx).Preload("Author").Where("author_id = ?", authorID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	if err := q.Order("id DESC").Limit(limit).Find(&posts).Error; err != nil {
		return nil, storeError(err)
	}
	return posts, nil
}

// candidates is the shared feed scope: followed authors, never the viewer,
// nothing the viewer already voted on.
func (r *postRepository) candidates(ctx context.Context, q FeedQuery) *gorm.DB {
	voted := r.db.Model(&models.Vote{}).Select("post_id").Where("voter_id = ?", q.ViewerID)
	tx := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id IN ?", q.AuthorIDs).
		Where("author_id <> ?", q.ViewerID).
		Where("id NOT IN (?)", voted)
	if q.BeforeID > 0 {
		tx = tx.Where("id < ?", q.BeforeID)
	}
	return tx
}

func (r *postRepository) ListFeedCandidates(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(q.AuthorIDs) == 0 {
		return posts, nil
	}
	// Ordered by the cursor column so backdated posts cannot fall between pages.
	if err := r.candidates(ctx, q).Order("id DESC").Limit(q.Limit).Find(&posts).Error; err != nil {
		return nil, storeError(err)
	}
	return posts, nil
}

func (r *postRepository) RandomCandidates(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(q.AuthorIDs) == 0 {
		return posts, nil
	}
	// RANDOM() exists in both postgres and sqlite.
	if err := r.candidates(ctx, q).Order("RANDOM()").Limit(q.Limit).Find(&posts).Error; err != nil {
		return nil, storeError(err)
	}
	return posts, nil
}

func (r *postRepository) ListIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}

func (r *postRepository) SetCounts(ctx context.Context, id uint, c tally.Counts) error {
	c = c.Sanitize()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(map[string]any{
		"yes_count":   c.Yes,
		"no_count":    c.No,
		"total_count": c.Total,
	})
	if res.Error != nil {
		return storeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
