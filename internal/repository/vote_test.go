package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hotorflop/internal/audience"
	"hotorflop/internal/models"
	"hotorflop/internal/tally"
	"hotorflop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteRepository_Cast(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	post := testutil.CreatePost(t, db, author.ID, audience.Followers)
	require.NoError(t, NewPostRepository(db).SetCounts(ctx, post.ID, tally.Counts{Yes: 2, No: 3, Total: 5}))

	res, err := repo.Cast(ctx, voter.ID, post.ID, tally.Yes)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, tally.Counts{Yes: 3, No: 3, Total: 6}, res.Counts)

	t.Run("repeat vote is a no-op", func(t *testing.T) {
		res, err := repo.Cast(ctx, voter.ID, post.ID, tally.No)
		require.NoError(t, err)
		assert.False(t, res.Applied)
		assert.Equal(t, tally.Counts{Yes: 3, No: 3, Total: 6}, res.Counts)

		stored, err := repo.Counts(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, res.Counts, stored)
	})

	t.Run("unknown choice", func(t *testing.T) {
		_, err := repo.Cast(ctx, author.ID, post.ID, tally.Choice("maybe"))
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := repo.Cast(ctx, voter.ID, 9999, tally.Yes)
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("voted ids", func(t *testing.T) {
		ids, err := repo.VotedPostIDs(ctx, voter.ID)
		require.NoError(t, err)
		assert.Equal(t, []uint{post.ID}, ids)
	})
}

func TestVoteRepository_CastRepairsInconsistentTotal(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	post := testutil.CreatePost(t, db, author.ID, audience.Followers)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]any{"yes_count": 1, "no_count": 1, "total_count": 7}).Error)

	res, err := repo.Cast(ctx, voter.ID, post.ID, tally.No)
	require.NoError(t, err)
	assert.Equal(t, tally.Counts{Yes: 1, No: 2, Total: 3}, res.Counts)
}

func TestVoteRepository_CastClampsNegativeCounters(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	post := testutil.CreatePost(t, db, author.ID, audience.Followers)
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]any{"yes_count": -4, "no_count": 2, "total_count": -2}).Error)

	res, err := repo.Cast(ctx, voter.ID, post.ID, tally.Yes)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, tally.Counts{Yes: 1, No: 2, Total: 3}, res.Counts)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, tally.Counts{Yes: 1, No: 2, Total: 3}, stored.Counts(), "the row itself is repaired")
}

func TestVoteRepository_ConcurrentVotersLoseNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewVoteRepository(db)
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePost(t, db, author.ID, audience.Followers)

	const voters = 20
	ids := make([]uint, voters)
	for i := range ids {
		ids[i] = testutil.CreateUser(t, db, "v"+string(rune('a'+i))).ID
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			choice := tally.Yes
			if i%2 == 1 {
				choice = tally.No
			}
			_, err := repo.Cast(ctx, id, post.ID, choice)
			assert.NoError(t, err)
		}(i, id)
	}
	wg.Wait()

	counts, err := repo.Counts(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, tally.Counts{Yes: voters / 2, No: voters / 2, Total: voters}, counts)

	choices, err := repo.Choices(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, counts, tally.Reduce(choices))
}

func TestVoteRepository_StoreUnavailable(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.Cast(context.Background(), 1, 2, tally.Yes)
	assert.Equal(t, models.CodeStoreUnavailable, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
