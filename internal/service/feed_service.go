package service

import (
	"context"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/observability"
	"hotorflop/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// maxFeedRounds bounds how many candidate batches one page may scan.
const maxFeedRounds = 5

// FeedService assembles a viewer's voting feed.
type FeedService struct {
	postRepo   repository.PostRepository
	visibility *VisibilityService
	pageSize   int
}

// FeedInput selects one feed page.
type FeedInput struct {
	ViewerID uint
	// Cursor is the id of the last post on the previous page.
	Cursor uint
	Limit  int
}

// FeedPage is one page of posts, newest first.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor *uint          `json:"next_cursor"`
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository, visibility *VisibilityService, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &FeedService{postRepo: postRepo, visibility: visibility, pageSize: pageSize}
}

// Feed returns posts by followed authors that the viewer may see and has not
// voted on. The viewer's own posts never appear.
func (s *FeedService) Feed(ctx context.Context, in FeedInput) (page *FeedPage, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.Feed",
		attribute.Int64("viewer.id", int64(in.ViewerID)),
		attribute.Int64("cursor", int64(in.Cursor)),
	)
	defer func() { observability.EndSpan(span, err) }()

	limit := in.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > s.pageSize*maxFeedRounds {
		limit = s.pageSize * maxFeedRounds
	}

	g, err := s.visibility.Graph(ctx, in.ViewerID)
	if err != nil {
		return nil, err
	}
	policy := s.visibility.Policy(in.ViewerID)
	q := repository.FeedQuery{
		AuthorIDs: g.Authors(),
		ViewerID:  in.ViewerID,
		BeforeID:  in.Cursor,
		Limit:     limit,
	}

	out := make([]*models.Post, 0, limit)
	exhausted := false
	for round := 0; round < maxFeedRounds && len(out) < limit; round++ {
		candidates, err := s.postRepo.ListFeedCandidates(ctx, q)
		if err != nil {
			return nil, err
		}
		visible := audience.Filter(policy, in.ViewerID, candidates, subjectOf, g)
		observability.FeedCandidates.WithLabelValues("shown").Add(float64(len(visible)))
		observability.FeedCandidates.WithLabelValues("hidden").Add(float64(len(candidates) - len(visible)))
		out = append(out, visible...)

		if len(candidates) < q.Limit {
			exhausted = true
			break
		}
		q.BeforeID = candidates[len(candidates)-1].ID
	}

	page = &FeedPage{Posts: out}
	if len(out) > limit {
		page.Posts = out[:limit]
		exhausted = false
	}
	switch {
	case len(page.Posts) > 0 && !exhausted:
		next := page.Posts[len(page.Posts)-1].ID
		page.NextCursor = &next
	case len(page.Posts) == 0 && !exhausted && q.BeforeID != in.Cursor:
		// Every scanned candidate was hidden; resume after them.
		next := q.BeforeID
		page.NextCursor = &next
	}
	return page, nil
}

// Random returns one feed-eligible post chosen at random.
func (s *FeedService) Random(ctx context.Context, viewerID uint) (*models.Post, error) {
	g, err := s.visibility.Graph(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.postRepo.RandomCandidates(ctx, repository.FeedQuery{
		AuthorIDs: g.Authors(),
		ViewerID:  viewerID,
		Limit:     s.pageSize,
	})
	if err != nil {
		return nil, err
	}
	visible := audience.Filter(s.visibility.Policy(viewerID), viewerID, candidates, subjectOf, g)
	if len(visible) == 0 {
		return nil, models.NewNotFoundError("Post", "random")
	}
	return visible[0], nil
}
