package service

import (
	"context"
	"testing"
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/cache"
	"hotorflop/internal/featureflags"
	"hotorflop/internal/models"
	"hotorflop/internal/repository"
	"hotorflop/internal/tally"
	"hotorflop/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type feedWorld struct {
	db       *gorm.DB
	viewer   *models.User
	followed *models.User
	closeBy  *models.User
	stranger *models.User
	posts    map[string]*models.Post
}

// newFeedWorld builds: viewer follows followed; closeBy marked viewer close
// without being followed; stranger has no edge to viewer.
func newFeedWorld(t *testing.T) *feedWorld {
	db := testutil.NewSQLiteDB(t)
	w := &feedWorld{
		db:       db,
		viewer:   testutil.CreateUser(t, db, "viewer"),
		followed: testutil.CreateUser(t, db, "followed"),
		closeBy:  testutil.CreateUser(t, db, "closeby"),
		stranger: testutil.CreateUser(t, db, "stranger"),
		posts:    map[string]*models.Post{},
	}
	testutil.Follow(t, db, w.viewer.ID, w.followed.ID, false)
	testutil.Follow(t, db, w.closeBy.ID, w.viewer.ID, true)

	w.posts["own"] = testutil.CreatePost(t, db, w.viewer.ID, audience.Followers)
	w.posts["followed/followers"] = testutil.CreatePost(t, db, w.followed.ID, audience.Followers)
	w.posts["followed/close"] = testutil.CreatePost(t, db, w.followed.ID, audience.CloseFriends)
	w.posts["closeby/followers"] = testutil.CreatePost(t, db, w.closeBy.ID, audience.Followers)
	w.posts["closeby/close"] = testutil.CreatePost(t, db, w.closeBy.ID, audience.CloseFriends)
	w.posts["stranger/followers"] = testutil.CreatePost(t, db, w.stranger.ID, audience.Followers)
	return w
}

func (w *feedWorld) feed(flags string, pageSize int) *FeedService {
	vis := NewVisibilityService(repository.NewRelationshipRepository(w.db), featureflags.NewManager(flags), time.Minute)
	return NewFeedService(repository.NewPostRepository(w.db), vis, pageSize)
}

func (w *feedWorld) ids(names ...string) []uint {
	out := make([]uint, 0, len(names))
	for _, n := range names {
		out = append(out, w.posts[n].ID)
	}
	return out
}

func TestFeedService_Visibility(t *testing.T) {
	w := newFeedWorld(t)

	page, err := w.feed("close_friend_override=on", 20).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID})
	require.NoError(t, err)
	assert.Equal(t, w.ids("closeby/close", "closeby/followers", "followed/followers"), postIDs(page.Posts))
	assert.Nil(t, page.NextCursor)

	strict, err := w.feed("close_friend_override=off", 20).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID})
	require.NoError(t, err)
	assert.Equal(t, w.ids("closeby/close", "followed/followers"), postIDs(strict.Posts))
}

func TestFeedService_SkipsVotedPosts(t *testing.T) {
	w := newFeedWorld(t)
	_, err := repository.NewVoteRepository(w.db).Cast(context.Background(), w.viewer.ID, w.posts["closeby/close"].ID, tally.Yes)
	require.NoError(t, err)

	page, err := w.feed("", 20).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID})
	require.NoError(t, err)
	assert.Equal(t, w.ids("closeby/followers", "followed/followers"), postIDs(page.Posts))
}

func TestFeedService_Pagination(t *testing.T) {
	w := newFeedWorld(t)
	svc := w.feed("close_friend_override=on", 20)
	ctx := context.Background()

	first, err := svc.Feed(ctx, FeedInput{ViewerID: w.viewer.ID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, w.ids("closeby/close", "closeby/followers"), postIDs(first.Posts))
	require.NotNil(t, first.NextCursor)

	second, err := svc.Feed(ctx, FeedInput{ViewerID: w.viewer.ID, Limit: 2, Cursor: *first.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, w.ids("followed/followers"), postIDs(second.Posts))
	assert.Nil(t, second.NextCursor)
}

func TestFeedService_HiddenBatchAdvancesCursor(t *testing.T) {
	w := newFeedWorld(t)
	for i := 0; i < 12; i++ {
		testutil.CreatePost(t, w.db, w.followed.ID, audience.CloseFriends)
	}

	page, err := w.feed("close_friend_override=off", 20).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	require.NotNil(t, page.NextCursor)

	rest, err := w.feed("close_friend_override=off", 20).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID, Limit: 2, Cursor: *page.NextCursor})
	require.NoError(t, err)
	assert.Equal(t, w.ids("closeby/close", "followed/followers"), postIDs(rest.Posts))
}

func TestFeedService_Random(t *testing.T) {
	w := newFeedWorld(t)

	post, err := w.feed("", 20).Random(context.Background(), w.viewer.ID)
	require.NoError(t, err)
	assert.Contains(t, w.ids("closeby/close", "closeby/followers", "followed/followers"), post.ID)

	_, err = w.feed("", 20).Random(context.Background(), w.stranger.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestFeedService_FollowInvalidatesCachedGraph(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		_ = cache.GetClient().Close()
		cache.SetClient(nil)
		mr.Close()
	})

	w := newFeedWorld(t)
	rels := repository.NewRelationshipRepository(w.db)
	vis := NewVisibilityService(rels, nil, time.Minute)
	feed := NewFeedService(repository.NewPostRepository(w.db), vis, 20)
	friends := NewFriendService(rels, repository.NewUserRepository(w.db), vis)
	ctx := context.Background()

	before, err := feed.Feed(ctx, FeedInput{ViewerID: w.viewer.ID})
	require.NoError(t, err)
	assert.NotContains(t, postIDs(before.Posts), w.posts["stranger/followers"].ID)
	assert.True(t, mr.Exists(cache.GraphKey(w.viewer.ID)))

	require.NoError(t, friends.Follow(ctx, w.viewer.ID, w.stranger.ID))
	assert.False(t, mr.Exists(cache.GraphKey(w.viewer.ID)))

	after, err := feed.Feed(ctx, FeedInput{ViewerID: w.viewer.ID})
	require.NoError(t, err)
	assert.Contains(t, postIDs(after.Posts), w.posts["stranger/followers"].ID)
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

// backdate sets created_at so it no longer follows id order.
func backdate(t *testing.T, db *gorm.DB, p *models.Post, age time.Duration) {
	t.Helper()
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", p.ID).
		Update("created_at", time.Now().Add(-age)).Error)
}

func TestFeedService_PagingIgnoresBackdatedPosts(t *testing.T) {
	w := newFeedWorld(t)
	svc := w.feed("close_friend_override=off", 20)
	ctx := context.Background()

	offsets := []time.Duration{3 * time.Hour, 0, 5 * time.Hour, time.Hour, 4 * time.Hour, 2 * time.Hour}
	var want []uint
	for _, age := range offsets {
		p := testutil.CreatePost(t, w.db, w.followed.ID, audience.Followers)
		backdate(t, w.db, p, age)
		want = append([]uint{p.ID}, want...)
	}
	want = append(want, w.ids("closeby/close", "followed/followers")...)

	var got []uint
	var cursor uint
	for range 10 {
		page, err := svc.Feed(ctx, FeedInput{ViewerID: w.viewer.ID, Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		got = append(got, postIDs(page.Posts)...)
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	assert.Equal(t, want, got)
}

func TestFeedService_LimitIsCapped(t *testing.T) {
	w := newFeedWorld(t)
	for i := 0; i < 12; i++ {
		testutil.CreatePost(t, w.db, w.followed.ID, audience.Followers)
	}

	page, err := w.feed("close_friend_override=on", 2).Feed(context.Background(), FeedInput{ViewerID: w.viewer.ID, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page.Posts, 2*maxFeedRounds)
	assert.NotNil(t, page.NextCursor)
}

func TestPostService_ListByAuthorPagesBackdatedPosts(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, s.db, "author")

	var want []uint
	for _, age := range []time.Duration{0, time.Hour, 2 * time.Hour} {
		p := testutil.CreatePost(t, s.db, author.ID, audience.Followers)
		backdate(t, s.db, p, age)
		want = append([]uint{p.ID}, want...)
	}

	var got []uint
	var cursor uint
	for range 5 {
		posts, err := s.posts.ListByAuthor(ctx, ListAuthorPostsInput{ViewerID: author.ID, AuthorID: author.ID, Cursor: cursor, Limit: 1})
		require.NoError(t, err)
		if len(posts) == 0 {
			break
		}
		got = append(got, postIDs(posts)...)
		cursor = posts[len(posts)-1].ID
	}
	assert.Equal(t, want, got)
}
