package service

import (
	"context"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/notifications"
	"hotorflop/internal/repository"
	"hotorflop/internal/tally"

	"github.com/stretchr/testify/mock"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	repository.PostRepository
	getByIDFn   func(context.Context, uint) (*models.Post, error)
	listIDsFn   func(context.Context) ([]uint, error)
	setCountsFn func(context.Context, uint, tally.Counts) error
}

func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListIDs(ctx context.Context) ([]uint, error) {
	return s.listIDsFn(ctx)
}
func (s *postRepoStub) SetCounts(ctx context.Context, id uint, c tally.Counts) error {
	return s.setCountsFn(ctx, id, c)
}

// voteRepoStub is a stub for repository.VoteRepository.
type voteRepoStub struct {
	castFn    func(context.Context, uint, uint, tally.Choice) (repository.CastResult, error)
	countsFn  func(context.Context, uint) (tally.Counts, error)
	choicesFn func(context.Context, uint) ([]tally.Choice, error)
}

func (s *voteRepoStub) Cast(ctx context.Context, voterID, postID uint, choice tally.Choice) (repository.CastResult, error) {
	return s.castFn(ctx, voterID, postID, choice)
}
func (s *voteRepoStub) Counts(ctx context.Context, postID uint) (tally.Counts, error) {
	return s.countsFn(ctx, postID)
}
func (s *voteRepoStub) Choices(ctx context.Context, postID uint) ([]tally.Choice, error) {
	return s.choicesFn(ctx, postID)
}
func (s *voteRepoStub) VotedPostIDs(context.Context, uint) ([]uint, error) {
	return nil, nil
}

// relRepoStub serves a fixed graph.
type relRepoStub struct {
	repository.RelationshipRepository
	graph audience.Graph
}

func (s *relRepoStub) Graph(context.Context, uint) (audience.Graph, error) {
	return s.graph, nil
}

// publisherMock records published events.
type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishVoteCast(ctx context.Context, e notifications.VoteCastEvent) error {
	return m.Called(ctx, e).Error(0)
}
func (m *publisherMock) PublishPostCreated(ctx context.Context, e notifications.PostCreatedEvent) error {
	return m.Called(ctx, e).Error(0)
}
func (m *publisherMock) PublishMessageSent(ctx context.Context, e notifications.MessageSentEvent) error {
	return m.Called(ctx, e).Error(0)
}
func (m *publisherMock) Close() error {
	return nil
}
