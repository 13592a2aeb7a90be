package users_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizplay/internal/db"
	"github.com/mind-engage/quizplay/internal/users"
)

func newStore(t *testing.T) *users.SQLStore {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return users.NewSQLStore(h)
}

func TestCreateAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, users.User{Username: "ana", PasswordHash: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, "student", u.Role)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "ana", got.Username)

	got, err = s.GetByUsername(ctx, "ana")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.Create(ctx, users.User{Username: "ana"})
	require.ErrorIs(t, err, users.ErrUsernameTaken)

	_, err = s.GetUser(ctx, "nope")
	require.ErrorIs(t, err, users.ErrNotFound)
}

func TestEnsureAdminIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "hash"))
	require.NoError(t, s.EnsureAdmin(ctx, "admin", "other"))

	list, err := s.List(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "hash", list[0].PasswordHash)
}

func TestSaveScores_RatchetInSQL(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, users.User{Username: "bo", ScoreNormal: 5, ScoreMultiple: 3})
	require.NoError(t, err)
	require.Equal(t, 8, u.Score)

	// a stale writer trying to lower score_normal is ignored by the WHERE guard
	stale := u
	stale.ScoreNormal = 2
	require.NoError(t, s.SaveScores(ctx, stale, []users.Field{users.FieldScoreNormal, users.FieldScore}))
	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 5, got.ScoreNormal)
	require.Equal(t, 8, got.Score)

	up := u
	up.ScoreMultiple = 9
	require.NoError(t, s.SaveScores(ctx, up, []users.Field{users.FieldScoreMultiple, users.FieldScore}))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 9, got.ScoreMultiple)
	require.Equal(t, 14, got.Score)

	require.ErrorIs(t, s.SaveScores(ctx, users.User{ID: "ghost"}, []users.Field{users.FieldScore}), users.ErrNotFound)
}

func TestSaveScores_ConcurrentWritersConverge(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	u, err := s.Create(ctx, users.User{Username: "cy"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for v := 1; v <= 12; v++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			w := u
			w.ScoreNormal = v
			w.ScoreMultiple = 13 - v
			_ = s.SaveScores(ctx, w, []users.Field{users.FieldScoreNormal, users.FieldScoreMultiple, users.FieldScore})
		}(v)
	}
	wg.Wait()

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 12, got.ScoreNormal)
	require.Equal(t, 12, got.ScoreMultiple)
	require.Equal(t, 24, got.Score)
}

func TestRankingAndReset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	for _, x := range []users.User{
		{Username: "low", ScoreNormal: 1},
		{Username: "high", ScoreNormal: 5, ScoreMultiple: 5},
		{Username: "mid", ScoreMultiple: 4},
	} {
		_, err := s.Create(ctx, x)
		require.NoError(t, err)
	}

	page, err := s.Ranking(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "high", page[0].Username)
	require.Equal(t, 1, page[0].Rank)
	require.Equal(t, "mid", page[1].Username)

	page, err = s.Ranking(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, 3, page[0].Rank)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	high, err := s.GetByUsername(ctx, "high")
	require.NoError(t, err)
	require.NoError(t, s.ResetScores(ctx, high.ID))
	high, err = s.GetUser(ctx, high.ID)
	require.NoError(t, err)
	require.Zero(t, high.Score)
	require.ErrorIs(t, s.ResetScores(ctx, "ghost"), users.ErrNotFound)
}
