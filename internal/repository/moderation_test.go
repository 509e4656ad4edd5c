package repository

import (
	"context"
	"testing"
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u")
	post := testutil.CreatePost(t, db, u.ID, audience.Followers)

	c := &models.Comment{Content: "love it", PostID: post.ID, UserID: u.ID}
	require.NoError(t, repo.Create(ctx, c))

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "u", list[0].User.Username)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestWishlistRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewWishlistRepository(db)
	ctx := context.Background()

	u := testutil.CreateUser(t, db, "u")
	keep := testutil.CreatePost(t, db, u.ID, audience.Followers)
	drop := testutil.CreatePost(t, db, u.ID, audience.Followers)

	added, err := repo.Add(ctx, u.ID, keep.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = repo.Add(ctx, u.ID, keep.ID)
	require.NoError(t, err)
	assert.False(t, added)
	_, err = repo.Add(ctx, u.ID, drop.ID)
	require.NoError(t, err)

	require.NoError(t, NewPostRepository(db).Delete(ctx, drop.ID))

	items, err := repo.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].Post.ID)
	assert.Equal(t, "u", items[0].Post.Author.Username)

	require.NoError(t, repo.Remove(ctx, u.ID, keep.ID))
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(repo.Remove(ctx, u.ID, keep.ID)))
}

func TestReportRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewReportRepository(db)
	ctx := context.Background()

	reporter := testutil.CreateUser(t, db, "reporter")
	admin := testutil.CreateUser(t, db, "admin")
	target := reporter.ID

	r := &models.Report{ReporterID: reporter.ID, TargetType: models.ReportTargetUser, ReportedUserID: &target, Reason: "Spam"}
	require.NoError(t, repo.Create(ctx, r))
	assert.Equal(t, models.ReportStatusPending, r.Status)

	pending, err := repo.ListByStatus(ctx, models.ReportStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	at := time.Now().UTC().Truncate(time.Second)
	updated, err := repo.UpdateStatus(ctx, r.ID, models.ReportStatusResolved, admin.ID, at)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusResolved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, admin.ID, *updated.ReviewedBy)
	require.NotNil(t, updated.ReviewedAt)

	pending, err = repo.ListByStatus(ctx, models.ReportStatusPending, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := repo.ListByStatus(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = repo.UpdateStatus(ctx, 999, models.ReportStatusDismissed, admin.ID, at)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestUserRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &models.User{Username: "zoe", Email: "zoe@example.com"}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByUsername(ctx, "zoe")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	dup := &models.User{Username: "zoe", Email: "other@example.com"}
	assert.Equal(t, models.CodeConflict, models.ErrorCode(repo.Create(ctx, dup)))

	users, err := repo.ListByIDs(ctx, []uint{u.ID})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_SearchAndUpdate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	me := testutil.CreateUser(t, db, "sam_smith")
	sammy := testutil.CreateUser(t, db, "Sammy")
	testutil.CreateUser(t, db, "samxsmith")
	testutil.CreateUser(t, db, "bob")

	found, err := repo.Search(ctx, "SAM", me.ID, 10)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Sammy", found[0].Username)
	assert.Equal(t, "samxsmith", found[1].Username)

	// '_' is literal, so only sam_smith matches, and it is the caller.
	found, err = repo.Search(ctx, "m_s", me.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	updated, err := repo.UpdateProfile(ctx, me.ID, map[string]any{"name": "Sam", "profile_pic": "https://img.example.com/sam.png"})
	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.Name)
	assert.Equal(t, "sam_smith", updated.Username)

	_, err = repo.UpdateProfile(ctx, me.ID, map[string]any{"username": sammy.Username})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	_, err = repo.UpdateProfile(ctx, 999, map[string]any{"name": "ghost"})
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	same, err := repo.UpdateProfile(ctx, me.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sam", same.Name)
}
