package store

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"weather-acquisition-go/internal/config"
	"weather-acquisition-go/internal/db"
	"weather-acquisition-go/internal/domain/collection"
	"weather-acquisition-go/internal/domain/datasources"
	"weather-acquisition-go/internal/repository/inmemory"
	"weather-acquisition-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type dataSourceRepo = Repository[datasources.DataSource, *datasources.DataSource]

func openStore(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open(config.DBConfig{
		Driver: db.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "store.db"),
		Silent: true,
	}, logger.New(io.Discard, logger.LevelCritical, "json"))
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&datasources.DataSource{}))
	t.Cleanup(func() {
		_ = db.Close(gormDB)
	})
	return gormDB
}

func newRepo(t *testing.T, opts ...Option[datasources.DataSource]) *dataSourceRepo {
	t.Helper()
	return New[datasources.DataSource, *datasources.DataSource](openStore(t), opts...)
}

func seed(t *testing.T, repo *dataSourceRepo, names ...string) []datasources.DataSource {
	t.Helper()

	out := make([]datasources.DataSource, 0, len(names))
	for _, name := range names {
		added, err := repo.Add(context.Background(), &datasources.DataSource{Name: name})
		require.NoError(t, err)
		out = append(out, *added)
	}
	return out
}

type recordingTracker struct {
	items   map[int]datasources.DataSource
	sets    []int
	deletes []int
}

func newRecordingTracker() *recordingTracker {
	return &recordingTracker{items: map[int]datasources.DataSource{}}
}

func (r *recordingTracker) Get(id int) (*datasources.DataSource, bool) {
	item, ok := r.items[id]
	if !ok {
		return nil, false
	}
	return &item, true
}

func (r *recordingTracker) Set(id int, item *datasources.DataSource) {
	r.sets = append(r.sets, id)
	r.items[id] = *item
}

func (r *recordingTracker) Delete(id int) {
	r.deletes = append(r.deletes, id)
	delete(r.items, id)
}

func (r *recordingTracker) Clear() {
	r.items = map[int]datasources.DataSource{}
}

func TestAddPageRemoveScenario(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, WithTracker[datasources.DataSource](inmemory.NewIdentityMap[datasources.DataSource](time.Minute)))

	added, err := repo.Add(ctx, &datasources.DataSource{Name: "NOAA", Description: "National Oceanic and Atmospheric Administration"})
	require.NoError(t, err)
	assert.Equal(t, 1, added.ID)

	count, err := repo.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	page, err := repo.GetPage(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItemCount)
	assert.Equal(t, 1, page.TotalPageCount)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].Equal(*added))

	removed, err := repo.RemoveByID(ctx, added.ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.True(t, removed.Equal(*added))

	count, err = repo.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	removed, err = repo.RemoveByID(ctx, added.ID)
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestRemoveByIDUntrackedReturnsKeyShell(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	items := seed(t, repo, "NOAA")

	removed, err := repo.RemoveByID(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, items[0].ID, removed.ID)

	exists, err := repo.ContainsID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetSlices(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seed(t, repo, "a", "b", "c", "d")

	items, err := repo.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].Name)
	assert.Equal(t, "c", items[1].Name)

	items, err = repo.Get(ctx, -3, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Name)

	items, err = repo.Get(ctx, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = repo.Get(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestFirstsAndLasts(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seed(t, repo, "a", "b", "c", "d")

	firsts, err := repo.GetFirsts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, firsts, 2)
	assert.Equal(t, "a", firsts[0].Name)

	lasts, err := repo.GetLasts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, lasts, 3)
	assert.Equal(t, "b", lasts[0].Name)
	assert.Equal(t, "d", lasts[2].Name)

	lasts, err = collection.Lasts[datasources.DataSource](ctx, repo, 10)
	require.NoError(t, err)
	assert.Len(t, lasts, 4)
}

func TestGetPageEdges(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	page, err := repo.GetPage(ctx, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalItemCount)
	assert.Equal(t, 0, page.TotalPageCount)
	assert.NotNil(t, page.Items)

	seed(t, repo, "a", "b", "c")

	page, err = repo.GetPage(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItemCount)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPageCount)

	page, err = repo.GetPage(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].Name)
	assert.Equal(t, 2, page.TotalPageCount)
	assert.Equal(t, 1, page.PageIndex)
	assert.Equal(t, 2, page.PageSize)

	page, err = repo.GetPage(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalItemCount)
}

func TestGetByIDAndContains(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	items := seed(t, repo, "NOAA")

	got, err := repo.GetByID(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "NOAA", got.Name)

	missing, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.Contains(ctx, &items[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Contains(ctx, &datasources.DataSource{Base: collection.Base{ID: 99}})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	items := seed(t, repo, "NOAA")

	changed := items[0]
	changed.Description = ""
	changed.Name = "NOAA GFS"
	updated, err := repo.Update(ctx, &changed)
	require.NoError(t, err)
	assert.Equal(t, "NOAA GFS", updated.Name)

	got, err := repo.GetByID(ctx, changed.ID)
	require.NoError(t, err)
	assert.Equal(t, "NOAA GFS", got.Name)

	_, err = repo.Update(ctx, &datasources.DataSource{Base: collection.Base{ID: 77}, Name: "ghost"})
	assert.ErrorIs(t, err, collection.ErrStaleRecord)

	_, err = repo.Update(ctx, &datasources.DataSource{Name: "unsaved"})
	assert.ErrorIs(t, err, collection.ErrStaleRecord)
}

func TestRemoveMissing(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	removed, err := repo.Remove(ctx, &datasources.DataSource{Base: collection.Base{ID: 5}, Name: "ghost"})
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestNilItemRejected(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.Add(ctx, nil)
	assert.ErrorIs(t, err, collection.ErrNilItem)
	_, err = repo.Update(ctx, nil)
	assert.ErrorIs(t, err, collection.ErrNilItem)
	_, err = repo.Remove(ctx, nil)
	assert.ErrorIs(t, err, collection.ErrNilItem)
	_, err = repo.Contains(ctx, nil)
	assert.ErrorIs(t, err, collection.ErrNilItem)
}

func TestCancelledContext(t *testing.T) {
	repo := newRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetCount(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.RemoveByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrackerNeverOutlivesStore(t *testing.T) {
	ctx := context.Background()
	tracker := newRecordingTracker()
	gormDB := openStore(t)
	repo := New[datasources.DataSource, *datasources.DataSource](gormDB, WithTracker[datasources.DataSource](tracker))

	items := seed(t, repo, "NOAA")
	assert.Equal(t, []int{items[0].ID}, tracker.sets)

	// Deleted behind the repository's back while still tracked.
	require.NoError(t, gormDB.Exec("DELETE FROM data_sources WHERE id = ?", items[0].ID).Error)

	got, err := repo.GetByID(ctx, items[0].ID)
	require.NoError(t, err)
	exists, err := repo.ContainsID(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, exists)
	assert.Contains(t, tracker.deletes, items[0].ID)

	// A tracked record missing from the store is untracked on removal.
	tracker.items[42] = datasources.DataSource{Base: collection.Base{ID: 42}, Name: "tracked"}
	removed, err := repo.RemoveByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Contains(t, tracker.deletes, 42)

	live := seed(t, repo, "ECMWF")
	removed, err = repo.RemoveByID(ctx, live[0].ID)
	require.NoError(t, err)
	require.NotNil(t, removed)
	assert.Equal(t, "ECMWF", removed.Name)
	_, tracked := tracker.Get(live[0].ID)
	assert.False(t, tracked)
}

func TestGetPageFarPastEnd(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seed(t, repo, "a", "b", "c")

	for _, pageIndex := range []int{2, 1 << 62, math.MaxInt} {
		page, err := repo.GetPage(ctx, pageIndex, 4)
		require.NoError(t, err)
		assert.Empty(t, page.Items, "pageIndex=%d", pageIndex)
		assert.Equal(t, 3, page.TotalItemCount)
		assert.Equal(t, 1, page.TotalPageCount)
	}
}

func TestHugeCountsReturnWhatExists(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	seed(t, repo, "a", "b", "c")

	items, err := repo.Get(ctx, 1, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = repo.GetLasts(ctx, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	page, err := repo.GetPage(ctx, 0, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, page.TotalPageCount)
}

func TestConcurrentAddAndRemove(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, WithTracker[datasources.DataSource](inmemory.NewIdentityMap[datasources.DataSource](time.Minute)))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			added, err := repo.Add(ctx, &datasources.DataSource{Name: fmt.Sprintf("source-%d", i)})
			if err != nil {
				errs <- err
				return
			}
			removed, err := repo.RemoveByID(ctx, added.ID)
			if err != nil {
				errs <- err
				return
			}
			if removed == nil || removed.ID != added.ID {
				errs <- fmt.Errorf("worker %d: removed %+v, want id %d", i, removed, added.ID)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	count, err := repo.GetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNameDefaultsToTable(t *testing.T) {
	repo := newRepo(t)
	assert.Equal(t, datasources.CollectionName, repo.Name())

	named := New[datasources.DataSource, *datasources.DataSource](openStore(t), WithName[datasources.DataSource]("sources"))
	assert.Equal(t, "sources", named.Name())
}
