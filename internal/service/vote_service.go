package service

import (
	"context"
	"log/slog"
	"strconv"

	"hotorflop/internal/cache"
	"hotorflop/internal/middleware"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/observability"
	"hotorflop/internal/repository"
	"hotorflop/internal/tally"

	"go.opentelemetry.io/otel/attribute"
)

// VoteService casts votes and reads results.
type VoteService struct {
	voteRepo   repository.VoteRepository
	postRepo   repository.PostRepository
	visibility *VisibilityService
	publisher  notifications.Publisher
}

// CastVoteInput is one vote request.
type CastVoteInput struct {
	VoterID uint
	PostID  uint
	Choice  string
}

// VoteOutcome is what a voter sees after voting.
type VoteOutcome struct {
	// Applied is false when the voter had already voted; Result is then the current tally.
	Applied bool         `json:"applied"`
	Result  tally.Result `json:"result"`
}

// NewVoteService returns a new VoteService. A nil publisher drops events.
func NewVoteService(
	voteRepo repository.VoteRepository,
	postRepo repository.PostRepository,
	visibility *VisibilityService,
	publisher notifications.Publisher,
) *VoteService {
	if publisher == nil {
		publisher = notifications.Noop{}
	}
	return &VoteService{
		voteRepo:   voteRepo,
		postRepo:   postRepo,
		visibility: visibility,
		publisher:  publisher,
	}
}

// Cast records a yes/no vote on a post the voter can see. Each voter counts
// once per post; a store failure leaves the tally untouched.
func (s *VoteService) Cast(ctx context.Context, in CastVoteInput) (out *VoteOutcome, err error) {
	ctx, span := observability.StartSpan(ctx, "VoteService.Cast",
		attribute.Int64("post.id", int64(in.PostID)),
		attribute.Int64("voter.id", int64(in.VoterID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	choice, err := tally.ParseChoice(in.Choice)
	if err != nil {
		return nil, models.NewValidationError("choice must be yes or no")
	}

	post, err := s.visibility.VisiblePost(ctx, s.postRepo, in.VoterID, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID == in.VoterID {
		return nil, models.NewForbiddenError("You cannot vote on your own post")
	}

	res, err := s.voteRepo.Cast(ctx, in.VoterID, in.PostID, choice)
	if err != nil {
		if models.ErrorCode(err) == models.CodeStoreUnavailable {
			observability.VoteFailures.Inc()
		}
		return nil, err
	}
	observability.VotesCast.WithLabelValues(string(choice), strconv.FormatBool(res.Applied)).Inc()

	if res.Applied {
		cache.Invalidate(ctx, cache.ResultsKey(in.PostID))
		if err := s.publisher.PublishVoteCast(ctx, notifications.VoteCastEvent{
			PostID:  in.PostID,
			VoterID: in.VoterID,
			Choice:  choice,
			Counts:  res.Counts,
		}); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish vote event",
				slog.Uint64("post_id", uint64(in.PostID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return &VoteOutcome{Applied: res.Applied, Result: tally.Summarize(res.Counts)}, nil
}

// Results returns the tally of a post the viewer can see.
func (s *VoteService) Results(ctx context.Context, viewerID, postID uint) (tally.Result, error) {
	if _, err := s.visibility.VisiblePost(ctx, s.postRepo, viewerID, postID); err != nil {
		return tally.Result{}, err
	}
	counts, _, err := cache.Aside(ctx, cache.ResultsKey(postID), cache.ResultsTTL, func(ctx context.Context) (tally.Counts, error) {
		return s.voteRepo.Counts(ctx, postID)
	})
	if err != nil {
		return tally.Result{}, err
	}
	return tally.Summarize(counts), nil
}

// RecountResult reports what a recount changed.
type RecountResult struct {
	Posts   int `json:"posts"`
	Changed int `json:"changed"`
}

// Recount rebuilds every post's counters from the vote log.
func (s *VoteService) Recount(ctx context.Context) (RecountResult, error) {
	var out RecountResult
	ids, err := s.postRepo.ListIDs(ctx)
	if err != nil {
		return out, err
	}
	for _, id := range ids {
		choices, err := s.voteRepo.Choices(ctx, id)
		if err != nil {
			return out, err
		}
		stored, err := s.voteRepo.Counts(ctx, id)
		if err != nil {
			return out, err
		}
		out.Posts++

		rebuilt := tally.Reduce(choices)
		if rebuilt == stored {
			continue
		}
		if err := s.postRepo.SetCounts(ctx, id, rebuilt); err != nil {
			return out, err
		}
		cache.Invalidate(ctx, cache.ResultsKey(id))
		out.Changed++
		middleware.Logger.InfoContext(ctx, "recounted post",
			slog.Uint64("post_id", uint64(id)),
			slog.Int64("yes", rebuilt.Yes),
			slog.Int64("no", rebuilt.No),
		)
	}
	return out, nil
}
