package seed

import (
	"context"
	"fmt"
	"log/slog"

	"hotorflop/internal/audience"
	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/tally"

	"gorm.io/gorm"
)

// Options configures a random seed run.
type Options struct {
	Users        int
	PostsPerUser int
	// FollowChance is the probability that one user follows another.
	FollowChance float64
	// CloseChance is the probability that a follow edge is marked close.
	CloseChance float64
	// VoteChance is the probability that a user votes on a post they can see.
	VoteChance float64
	// Seed makes a run reproducible; zero is random.
	Seed int64
}

// DefaultOptions is a small but well connected demo graph.
var DefaultOptions = Options{
	Users:        12,
	PostsPerUser: 3,
	FollowChance: 0.4,
	CloseChance:  0.25,
	VoteChance:   0.6,
}

// Summary counts what a seed run created.
type Summary struct {
	Users         int `json:"users" yaml:"users"`
	Posts         int `json:"posts" yaml:"posts"`
	Relationships int `json:"relationships" yaml:"relationships"`
	Votes         int `json:"votes" yaml:"votes"`
	Comments      int `json:"comments" yaml:"comments"`
}

// graph tracks seeded edges so votes only come from viewers who could see the post.
type graph map[[2]uint]bool

func (g graph) relation(viewer, author uint) audience.Relation {
	marksClose, follows := g[[2]uint{viewer, author}]
	return audience.Relation{
		Follows:             follows,
		MarkedCloseByAuthor: g[[2]uint{author, viewer}],
		MarksAuthorClose:    marksClose,
	}
}

// Seed fills db with random users, relationships, posts and votes.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	if opts.Users < 2 {
		return sum, fmt.Errorf("seed needs at least 2 users, got %d", opts.Users)
	}

	f := NewFactory(db, opts.Seed)
	middleware.Logger.InfoContext(ctx, "seeding database",
		slog.Int("users", opts.Users), slog.Int("posts_per_user", opts.PostsPerUser))

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	edges := graph{}
	for _, a := range users {
		for _, b := range users {
			if a.ID == b.ID || f.fake.Float64Range(0, 1) >= opts.FollowChance {
				continue
			}
			isClose := f.fake.Float64Range(0, 1) < opts.CloseChance
			if err := f.Follow(ctx, a, b, isClose); err != nil {
				return sum, fmt.Errorf("follow: %w", err)
			}
			edges[[2]uint{a.ID, b.ID}] = isClose
			sum.Relationships++
		}
	}

	for _, author := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			a := audience.Followers
			if f.fake.Number(0, 3) == 0 {
				a = audience.CloseFriends
			}
			post, err := f.CreatePost(ctx, author, func(p *models.Post) { p.Audience = a })
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			sum.Posts++

			votes, comments, err := f.engage(ctx, post, users, edges, opts.VoteChance)
			if err != nil {
				return sum, err
			}
			sum.Votes += votes
			sum.Comments += comments
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("relationships", sum.Relationships),
		slog.Int("votes", sum.Votes),
	)
	return sum, nil
}

// engage has viewers who can see post vote on it, and some of them comment.
func (f *Factory) engage(ctx context.Context, post *models.Post, users []*models.User, edges graph, chance float64) (int, int, error) {
	var votes, comments int
	for _, viewer := range users {
		if viewer.ID == post.AuthorID {
			continue
		}
		if !audience.IsVisible(post.Subject(), edges.relation(viewer.ID, post.AuthorID)) {
			continue
		}
		if f.fake.Float64Range(0, 1) >= chance {
			continue
		}

		choice := tally.No
		if f.fake.Bool() {
			choice = tally.Yes
		}
		applied, err := f.Vote(ctx, viewer, post, choice)
		if err != nil {
			return votes, comments, fmt.Errorf("vote: %w", err)
		}
		if applied {
			votes++
		}
		if f.fake.Number(0, 4) == 0 {
			if _, err := f.CreateComment(ctx, viewer, post); err != nil {
				return votes, comments, fmt.Errorf("comment: %w", err)
			}
			comments++
		}
	}
	return votes, comments, nil
}
