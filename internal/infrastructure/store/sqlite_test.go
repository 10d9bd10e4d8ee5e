package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laxmi8801/data-extractor/config"
	"github.com/laxmi8801/data-extractor/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close(context.Background()) }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_RoundTrip(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	record := juiceRecord()

	id, err := st.Insert(ctx, record)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := st.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, *record, got.ProductRecord)

	byName, err := st.FindByName(ctx, "Mango Fruit Drink")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)
}

func TestSQLite_InsertNeverDedupes(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.Insert(ctx, juiceRecord())
	require.NoError(t, err)
	second, err := st.Insert(ctx, juiceRecord())
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// the first match by name is the oldest document
	got, err := st.FindByName(ctx, "Mango Fruit Drink")
	require.NoError(t, err)
	assert.Equal(t, first, got.ID)
}

func TestSQLite_InMemorySharesOneDatabase(t *testing.T) {
	st, err := NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Insert(ctx, juiceRecord())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, n)
}

func TestIsMemoryDSN(t *testing.T) {
	assert.True(t, isMemoryDSN(":memory:"))
	assert.True(t, isMemoryDSN("file::memory:?cache=shared"))
	assert.True(t, isMemoryDSN("file:products?mode=memory&cache=shared"))
	assert.False(t, isMemoryDSN("labelreader.db"))
	assert.False(t, isMemoryDSN("file:/var/lib/labelreader/products.db"))
}

func TestSQLite_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = st.FindByName(ctx, "Unknown Juice")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.StoreConfig{
		Driver: DriverSQLite,
		URI:    filepath.Join(t.TempDir(), "open.db"),
	}, nil)
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.Ping(ctx))
	id, err := s.Insert(ctx, juiceRecord())
	require.NoError(t, err)
	_, err = s.FindByID(ctx, id)
	assert.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "redis"}, nil)
	assert.Error(t, err)
}
