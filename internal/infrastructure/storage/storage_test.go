package storage

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDB(t *testing.T) string {
	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDB := createTempDB(t)
	t.Cleanup(func() { os.Remove(tmpDB) })

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStorage_Migrations(t *testing.T) {
	store := newTestStorage(t)

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Reopening an existing database is a no-op migration
	path := createTempDB(t)
	defer os.Remove(path)
	first, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStorage_FetchRunLifecycle(t *testing.T) {
	store := newTestStorage(t)

	id, err := store.StartFetchRun(KindList, "page=1&limit=5", "sess-1")
	require.NoError(t, err)
	assert.Positive(t, id)

	run, err := store.GetFetchRun(id)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)
	assert.Equal(t, time.Duration(0), run.Duration())

	require.NoError(t, store.CompleteFetchRun(id, 5, 42))

	run, err = store.GetFetchRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, KindList, run.Kind)
	assert.Equal(t, "page=1&limit=5", run.Target)
	assert.Equal(t, "sess-1", run.SessionID)
	assert.Equal(t, 5, run.ItemCount)
	assert.Equal(t, 42, run.TotalItems)
	require.NotNil(t, run.CompletedAt)
	assert.False(t, run.CompletedAt.Before(run.StartedAt))
}

func TestStorage_FailAndDiscard(t *testing.T) {
	store := newTestStorage(t)

	failed, err := store.StartFetchRun(KindDetail, "7", "")
	require.NoError(t, err)
	require.NoError(t, store.FailFetchRun(failed, "GET magazine/edition/7: unexpected status 500"))

	stale, err := store.StartFetchRun(KindList, "page=2", "sess")
	require.NoError(t, err)
	require.NoError(t, store.DiscardFetchRun(stale))

	run, err := store.GetFetchRun(failed)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "500")

	run, err = store.GetFetchRun(stale)
	require.NoError(t, err)
	assert.Equal(t, StatusDiscarded, run.Status)
}

func TestStorage_GetFetchRun_Missing(t *testing.T) {
	store := newTestStorage(t)

	run, err := store.GetFetchRun(999)

	assert.NoError(t, err)
	assert.Nil(t, run)
}

func TestStorage_ListFetchRuns(t *testing.T) {
	store := newTestStorage(t)

	var ids []int64
	for i, kind := range []string{KindList, KindDetail, KindList, KindList} {
		session := "a"
		if i%2 == 1 {
			session = "b"
		}
		id, err := store.StartFetchRun(kind, "t", session)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, store.FailFetchRun(ids[2], "boom"))

	t.Run("newest first with default limit", func(t *testing.T) {
		runs, err := store.ListFetchRuns(FetchRunFilters{})
		require.NoError(t, err)
		require.Len(t, runs, 4)
		assert.Equal(t, ids[3], runs[0].ID)
		assert.Equal(t, ids[0], runs[3].ID)
	})

	t.Run("filters", func(t *testing.T) {
		runs, err := store.ListFetchRuns(FetchRunFilters{Kind: KindDetail})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, ids[1], runs[0].ID)

		runs, err = store.ListFetchRuns(FetchRunFilters{Status: StatusFailed})
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "boom", runs[0].ErrorMessage)

		runs, err = store.ListFetchRuns(FetchRunFilters{SessionID: "a", Kind: KindList})
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("limit", func(t *testing.T) {
		runs, err := store.ListFetchRuns(FetchRunFilters{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		runs, err := store.ListFetchRuns(FetchRunFilters{SessionID: "nobody"})
		require.NoError(t, err)
		assert.NotNil(t, runs)
		assert.Empty(t, runs)
	})
}

func TestMockRepository(t *testing.T) {
	repo := NewMockRepository()

	id, err := repo.StartFetchRun(KindList, "page=1", "s")
	require.NoError(t, err)
	assert.True(t, repo.StartFetchRunCalled)
	require.NoError(t, repo.CompleteFetchRun(id, 3, 3))

	run, err := repo.GetFetchRun(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)

	missing, err := repo.GetFetchRun(42)
	assert.NoError(t, err)
	assert.Nil(t, missing)

	repo.StartFetchRunErr = errors.New("disk full")
	_, err = repo.StartFetchRun(KindList, "", "")
	assert.EqualError(t, err, "disk full")

	repo.Reset()
	assert.Empty(t, repo.Runs())
}
