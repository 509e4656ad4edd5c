// Package seed creates demo data: random users, follow graphs, posts and
// votes, or a fixed scenario described in a YAML preset. Development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/repository"
	"hotorflop/internal/tally"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	fake  *gofakeit.Faker
	votes repository.VoteRepository
	// MaxDays spreads post creation times over the last MaxDays days.
	MaxDays int
}

// NewFactory returns a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64) *Factory {
	return &Factory{
		db:      db,
		fake:    gofakeit.New(seed),
		votes:   repository.NewVoteRepository(db),
		MaxDays: 30,
	}
}

// CreateUser persists a fake user. Overrides run before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:   fmt.Sprintf("%s%d", f.fake.Username(), f.fake.Number(100, 999)),
		Name:       f.fake.Name(),
		Email:      f.fake.Email(),
		ProfilePic: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.fake.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost returns an unsaved fake post by author.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	price := f.fake.Price(5, 500)
	post := &models.Post{
		Title:       f.fake.ProductName(),
		Description: f.fake.ProductDescription(),
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.fake.UUID()),
		URL:         f.fake.URL(),
		Category:    f.fake.ProductCategory(),
		Price:       &price,
		AuthorID:    author.ID,
		Audience:    audience.Followers,
	}

	maxDays := f.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	back := time.Duration(f.fake.Number(0, maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a fake post by author.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Follow persists follower -> followee, optionally marked close.
func (f *Factory) Follow(ctx context.Context, follower, followee *models.User, close bool) error {
	return f.db.WithContext(ctx).Create(&models.Relationship{
		UserID:      follower.ID,
		FriendID:    followee.ID,
		CloseFriend: close,
	}).Error
}

// Vote casts through the vote repository so the post's counters stay in step
// with the vote log.
func (f *Factory) Vote(ctx context.Context, voter *models.User, post *models.Post, choice tally.Choice) (bool, error) {
	res, err := f.votes.Cast(ctx, voter.ID, post.ID, choice)
	if err != nil {
		return false, err
	}
	return res.Applied, nil
}

// CreateComment persists a fake comment by user on post.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: f.fake.Sentence(8),
		UserID:  user.ID,
		PostID:  post.ID,
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}
