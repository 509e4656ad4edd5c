package service

import (
	"context"
	"errors"
	"testing"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/repository"
	"hotorflop/internal/tally"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	authorID uint = 1
	voterID  uint = 2
	postID   uint = 10
)

func newVoteFixture(a audience.Audience, g audience.Graph) (*VoteService, *voteRepoStub, *publisherMock) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			if id != postID {
				return nil, models.NewNotFoundError("Post", id)
			}
			p := &models.Post{ID: postID, AuthorID: authorID, Audience: a}
			p.SetCounts(tally.Counts{Yes: 2, No: 3, Total: 5})
			return p, nil
		},
	}
	votes := &voteRepoStub{
		castFn: func(_ context.Context, _, _ uint, choice tally.Choice) (repository.CastResult, error) {
			c, err := tally.Apply(tally.Counts{Yes: 2, No: 3, Total: 5}, choice)
			return repository.CastResult{Applied: true, Counts: c}, err
		},
		countsFn: func(context.Context, uint) (tally.Counts, error) {
			return tally.Counts{Yes: 2, No: 3, Total: 5}, nil
		},
	}
	pub := &publisherMock{}
	vis := NewVisibilityService(&relRepoStub{graph: g}, nil, 0)
	return NewVoteService(votes, posts, vis, pub), votes, pub
}

var follower = audience.NewGraph([]uint{authorID}, nil, nil)

func TestVoteService_CastApplied(t *testing.T) {
	svc, _, pub := newVoteFixture(audience.Followers, follower)
	pub.On("PublishVoteCast", mock.Anything, mock.MatchedBy(func(e notifications.VoteCastEvent) bool {
		return e.PostID == postID && e.VoterID == voterID && e.Counts == tally.Counts{Yes: 3, No: 3, Total: 6}
	})).Return(nil).Once()

	out, err := svc.Cast(context.Background(), CastVoteInput{VoterID: voterID, PostID: postID, Choice: "YES"})
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.Equal(t, int64(6), out.Result.Total)
	assert.Equal(t, 50, out.Result.YesPercent)
	assert.Equal(t, 50, out.Result.NoPercent)
	pub.AssertExpectations(t)
}

func TestVoteService_CastRepeatDoesNotPublish(t *testing.T) {
	svc, votes, pub := newVoteFixture(audience.Followers, follower)
	votes.castFn = func(context.Context, uint, uint, tally.Choice) (repository.CastResult, error) {
		return repository.CastResult{Applied: false, Counts: tally.Counts{Yes: 2, No: 3, Total: 5}}, nil
	}

	out, err := svc.Cast(context.Background(), CastVoteInput{VoterID: voterID, PostID: postID, Choice: "no"})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, tally.Counts{Yes: 2, No: 3, Total: 5}, out.Result.Counts)
	pub.AssertNotCalled(t, "PublishVoteCast", mock.Anything, mock.Anything)
}

func TestVoteService_CastRejected(t *testing.T) {
	tests := []struct {
		name     string
		audience audience.Audience
		graph    audience.Graph
		in       CastVoteInput
		code     string
	}{
		{"unknown choice", audience.Followers, follower, CastVoteInput{VoterID: voterID, PostID: postID, Choice: "maybe"}, models.CodeValidation},
		{"missing post", audience.Followers, follower, CastVoteInput{VoterID: voterID, PostID: 99, Choice: "yes"}, models.CodeNotFound},
		{"not a follower", audience.Followers, audience.Graph{}, CastVoteInput{VoterID: voterID, PostID: postID, Choice: "yes"}, models.CodeNotFound},
		{"close friends only", audience.CloseFriends, follower, CastVoteInput{VoterID: voterID, PostID: postID, Choice: "yes"}, models.CodeNotFound},
		{"own post", audience.Followers, audience.Graph{}, CastVoteInput{VoterID: authorID, PostID: postID, Choice: "yes"}, models.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, votes, pub := newVoteFixture(tt.audience, tt.graph)
			votes.castFn = func(context.Context, uint, uint, tally.Choice) (repository.CastResult, error) {
				t.Fatal("vote must not reach the store")
				return repository.CastResult{}, nil
			}
			_, err := svc.Cast(context.Background(), tt.in)
			assert.Equal(t, tt.code, models.ErrorCode(err))
			pub.AssertNotCalled(t, "PublishVoteCast", mock.Anything, mock.Anything)
		})
	}
}

func TestVoteService_CloseFriendCanVoteOnCloseFriendsPost(t *testing.T) {
	svc, _, pub := newVoteFixture(audience.CloseFriends, audience.NewGraph(nil, []uint{authorID}, nil))
	pub.On("PublishVoteCast", mock.Anything, mock.Anything).Return(nil)

	out, err := svc.Cast(context.Background(), CastVoteInput{VoterID: voterID, PostID: postID, Choice: "no"})
	require.NoError(t, err)
	assert.Equal(t, tally.Counts{Yes: 2, No: 4, Total: 6}, out.Result.Counts)
}

func TestVoteService_StoreUnavailable(t *testing.T) {
	svc, votes, pub := newVoteFixture(audience.Followers, follower)
	votes.castFn = func(context.Context, uint, uint, tally.Choice) (repository.CastResult, error) {
		return repository.CastResult{}, models.NewStoreUnavailableError(errors.New("timeout"))
	}

	out, err := svc.Cast(context.Background(), CastVoteInput{VoterID: voterID, PostID: postID, Choice: "yes"})
	assert.Nil(t, out)
	assert.Equal(t, models.CodeStoreUnavailable, models.ErrorCode(err))
	pub.AssertNotCalled(t, "PublishVoteCast", mock.Anything, mock.Anything)
}

func TestVoteService_PublishFailureDoesNotFailVote(t *testing.T) {
	svc, _, pub := newVoteFixture(audience.Followers, follower)
	pub.On("PublishVoteCast", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	out, err := svc.Cast(context.Background(), CastVoteInput{VoterID: voterID, PostID: postID, Choice: "yes"})
	require.NoError(t, err)
	assert.True(t, out.Applied)
}

func TestVoteService_Results(t *testing.T) {
	svc, _, _ := newVoteFixture(audience.Followers, follower)

	res, err := svc.Results(context.Background(), voterID, postID)
	require.NoError(t, err)
	assert.Equal(t, 40, res.YesPercent)
	assert.Equal(t, 60, res.NoPercent)

	hidden, _, _ := newVoteFixture(audience.Followers, audience.Graph{})
	_, err = hidden.Results(context.Background(), voterID, postID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestVoteService_Recount(t *testing.T) {
	svc, votes, _ := newVoteFixture(audience.Followers, follower)
	posts := svc.postRepo.(*postRepoStub)

	posts.listIDsFn = func(context.Context) ([]uint, error) { return []uint{10, 11}, nil }
	votes.choicesFn = func(_ context.Context, id uint) ([]tally.Choice, error) {
		if id == 10 {
			return []tally.Choice{tally.Yes, tally.Yes, tally.No, tally.No, tally.No}, nil
		}
		return []tally.Choice{tally.Yes}, nil
	}
	votes.countsFn = func(_ context.Context, id uint) (tally.Counts, error) {
		if id == 10 {
			return tally.Counts{Yes: 2, No: 3, Total: 5}, nil
		}
		return tally.Counts{Yes: 4, Total: 9}, nil
	}
	var written []uint
	posts.setCountsFn = func(_ context.Context, id uint, c tally.Counts) error {
		assert.Equal(t, tally.Counts{Yes: 1, Total: 1}, c)
		written = append(written, id)
		return nil
	}

	res, err := svc.Recount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecountResult{Posts: 2, Changed: 1}, res)
	assert.Equal(t, []uint{11}, written)
}
