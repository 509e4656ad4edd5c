package repository

import (
	"context"

	"hotorflop/internal/models"
	"hotorflop/internal/tally"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CastResult is the outcome of one vote attempt.
type CastResult struct {
	// Applied is false when the voter had already voted on the post.
	Applied bool
	Counts  tally.Counts
}

// VoteRepository defines the interface for vote data operations
type VoteRepository interface {
	Cast(ctx context.Context, voterID, postID uint, choice tally.Choice) (CastResult, error)
	Counts(ctx context.Context, postID uint) (tally.Counts, error)
	Choices(ctx context.Context, postID uint) ([]tally.Choice, error)
	VotedPostIDs(ctx context.Context, voterID uint) ([]uint, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

const (
	clampedYes = "(CASE WHEN yes_count < 0 THEN 0 ELSE yes_count END)"
	clampedNo  = "(CASE WHEN no_count < 0 THEN 0 ELSE no_count END)"
)

// Cast records the vote and bumps the post's counters in one transaction. The
// (voter, post) unique index turns a repeat vote into a no-op.
func (r *voteRepository) Cast(ctx context.Context, voterID, postID uint, choice tally.Choice) (CastResult, error) {
	delta, err := tally.Delta(choice)
	if err != nil {
		return CastResult{}, models.NewValidationError(err.Error())
	}

	var out CastResult
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "yes_count", "no_count", "total_count").First(&post, postID).Error; err != nil {
			return lookupError(err, "Post", postID)
		}

		vote := models.Vote{VoterID: voterID, PostID: postID, Choice: choice}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&vote)
		if res.Error != nil {
			return storeError(res.Error)
		}
		if res.RowsAffected == 0 {
			out = CastResult{Applied: false, Counts: post.Counts().Sanitize()}
			return nil
		}

		// Negative stored counters are clamped in the same statement so the
		// row leaves with total_count = yes_count + no_count.
		res = tx.Model(&models.Post{}).Where("id = ?", postID).Updates(map[string]any{
			"yes_count":   gorm.Expr(clampedYes+" + ?", delta.Yes),
			"no_count":    gorm.Expr(clampedNo+" + ?", delta.No),
			"total_count": gorm.Expr(clampedYes+" + "+clampedNo+" + ?", delta.Total),
		})
		if res.Error != nil {
			return storeError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", postID)
		}

		var updated models.Post
		if err := tx.Select("id", "yes_count", "no_count", "total_count").First(&updated, postID).Error; err != nil {
			return storeError(err)
		}
		out = CastResult{Applied: true, Counts: updated.Counts().Sanitize()}
		return nil
	})
	if err != nil {
		return CastResult{}, storeError(err)
	}
	return out, nil
}

func (r *voteRepository) Counts(ctx context.Context, postID uint) (tally.Counts, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "yes_count", "no_count", "total_count").First(&post, postID).Error; err != nil {
		return tally.Counts{}, lookupError(err, "Post", postID)
	}
	return post.Counts().Sanitize(), nil
}

func (r *voteRepository) Choices(ctx context.Context, postID uint) ([]tally.Choice, error) {
	var choices []tally.Choice
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("post_id = ?", postID).Order("id ASC").Pluck("choice", &choices).Error; err != nil {
		return nil, storeError(err)
	}
	return choices, nil
}

func (r *voteRepository) VotedPostIDs(ctx context.Context, voterID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).Where("voter_id = ?", voterID).Pluck("post_id", &ids).Error; err != nil {
		return nil, storeError(err)
	}
	return ids, nil
}
