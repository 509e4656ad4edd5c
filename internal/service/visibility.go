// Package service holds the application's business logic on top of the repositories.
package service

import (
	"context"
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/cache"
	"hotorflop/internal/featureflags"
	"hotorflop/internal/models"
	"hotorflop/internal/observability"
	"hotorflop/internal/repository"
)

// VisibilityService answers "may this viewer see this post" from a cached
// per-viewer relationship graph.
type VisibilityService struct {
	relRepo repository.RelationshipRepository
	flags   *featureflags.Manager
	ttl     time.Duration
}

// NewVisibilityService returns a VisibilityService caching graphs for ttl.
func NewVisibilityService(relRepo repository.RelationshipRepository, flags *featureflags.Manager, ttl time.Duration) *VisibilityService {
	return &VisibilityService{relRepo: relRepo, flags: flags, ttl: ttl}
}

// Policy is the rule set in force for viewerID.
func (s *VisibilityService) Policy(viewerID uint) audience.Policy {
	return s.flags.Policy(viewerID)
}

// Graph loads viewerID's edges, through the cache when one is configured.
func (s *VisibilityService) Graph(ctx context.Context, viewerID uint) (*audience.Graph, error) {
	g, hit, err := cache.Aside(ctx, cache.GraphKey(viewerID), s.ttl, func(ctx context.Context) (audience.Graph, error) {
		return s.relRepo.Graph(ctx, viewerID)
	})
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	observability.GraphCacheLookups.WithLabelValues(result).Inc()
	return &g, nil
}

// CanView reports whether viewerID may open post directly.
func (s *VisibilityService) CanView(ctx context.Context, viewerID uint, post *models.Post) (bool, error) {
	if post.AuthorID == viewerID {
		return true, nil
	}
	g, err := s.Graph(ctx, viewerID)
	if err != nil {
		return false, err
	}
	return s.Policy(viewerID).CanView(viewerID, post.Subject(), g), nil
}

// VisiblePost loads a post and hides it behind NOT_FOUND when viewerID may not see it.
func (s *VisibilityService) VisiblePost(ctx context.Context, posts repository.PostRepository, viewerID, postID uint) (*models.Post, error) {
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	ok, err := s.CanView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// Connected reports whether a follows b or b follows a.
func (s *VisibilityService) Connected(ctx context.Context, a, b uint) (bool, error) {
	ga, err := s.Graph(ctx, a)
	if err != nil {
		return false, err
	}
	if ga.RelationTo(b).Follows {
		return true, nil
	}
	gb, err := s.Graph(ctx, b)
	if err != nil {
		return false, err
	}
	return gb.RelationTo(a).Follows, nil
}

// Invalidate drops cached graphs after an edge between users changed.
func (s *VisibilityService) Invalidate(ctx context.Context, userIDs ...uint) {
	cache.InvalidateGraph(ctx, userIDs...)
}

func subjectOf(p *models.Post) audience.Subject {
	return p.Subject()
}
