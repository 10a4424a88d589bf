package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sagarc03/sptzx"
	"github.com/sagarc03/sptzx/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	db, err := postgres.Connect(ctx, getDSN(pool), sptzx.Tables{Objects: "objects"})
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	assert.NoError(t, db.Ping(ctx), "ping should succeed after connect")
}

func TestDatabase_MigrateValidate(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tableName := "migrate_test_" + getRandomString(t)
	db, err := postgres.Connect(ctx, getDSN(pool), sptzx.Tables{Objects: tableName})
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
		_ = dropTable(ctx, pool, tableName)
	}()

	assert.Error(t, db.Validate(ctx), "validate should fail without tables")

	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx), "migrate should be idempotent")
	require.NoError(t, db.Validate(ctx))

	var persistence string
	err = pool.QueryRow(ctx, `SELECT relpersistence::text FROM pg_class WHERE relname = $1`, tableName).Scan(&persistence)
	require.NoError(t, err)
	assert.Equal(t, "u", persistence, "objects table should be unlogged")
}

func TestDropTables(t *testing.T) {
	pool := getSharedTestDatabase(t)
	ctx := context.Background()

	tables := sptzx.Tables{Objects: "drop_test_" + getRandomString(t)}
	require.NoError(t, postgres.Migrate(ctx, pool, tables))
	require.NoError(t, postgres.DropTables(ctx, pool, tables))
	assert.Error(t, postgres.ValidateSchema(ctx, pool, tables))
}

func TestStore_WriteReadRemove(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "obj-1", []byte("hello")))

	got, err := s.Read(ctx, "obj-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, s.Write(ctx, "obj-1", []byte("again")))
	got, err = s.Read(ctx, "obj-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("again"), got)

	require.NoError(t, s.Remove(ctx, "obj-1"))
	_, err = s.Read(ctx, "obj-1")
	assert.ErrorIs(t, err, sptzx.ErrNotFound)
	assert.ErrorIs(t, s.Remove(ctx, "obj-1"), sptzx.ErrNotFound)
}

func TestStore_Purge(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for i := range 3 {
		require.NoError(t, s.Write(ctx, fmt.Sprintf("obj-%d", i), []byte("x")))
	}

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_Concurrent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Go(func() {
			id := fmt.Sprintf("obj-%d", i)
			assert.NoError(t, s.Write(ctx, id, []byte(id)))
			got, err := s.Read(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, id, string(got))
		})
	}
	wg.Wait()
}

func TestStore_ObjectStoreIntegration(t *testing.T) {
	medium := setupTestStore(t)
	ctx := context.Background()

	s, err := sptzx.NewObjectStore(medium, sptzx.StoreConfig{MaxPayloadSize: 1024})
	require.NoError(t, err)

	rec, err := s.Put(ctx, sptzx.PutObject{Data: []byte("payload"), TTL: time.Minute})
	require.NoError(t, err)

	_, data, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, s.Delete(ctx, rec.ID))
	_, err = medium.Read(ctx, rec.ID)
	assert.ErrorIs(t, err, sptzx.ErrNotFound)
}

func TestNewStore(t *testing.T) {
	_, err := postgres.NewStore(nil, sptzx.Tables{})
	assert.Error(t, err)
}
