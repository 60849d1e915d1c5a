package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBlobStore struct{}

func (failingBlobStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingBlobStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk gone")
}

func (failingBlobStore) Close() error { return nil }

func sampleSnapshot() Snapshot {
	return Snapshot{
		Subjects: []Subject{
			{ID: "1", Name: "Intro to Systems", Teacher: "Unknown", Time: "09:00", Days: []Weekday{Monday, Wednesday}},
			{ID: "2", Name: "Databases", Teacher: "Dr. Codd", Time: "11:15", Days: []Weekday{}},
		},
		Exams: []Exam{
			{ID: "3", Name: "Systems Midterm", Date: "2026-04-10", Time: "13:00", Location: "Room 4"},
		},
		Timestamp: testNow.UnixMilli(),
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	sqlite, err := NewSQLiteBlobStore(context.Background(), filepath.Join(t.TempDir(), "nested", "database.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	rdb, err := NewRedisBlobStore(context.Background(), &redis.Options{Addr: miniredis.RunT(t).Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	engines := map[string]BlobStore{
		"memory": NewMemoryBlobStore(),
		"sqlite": sqlite,
		"redis":  rdb,
	}

	for name, blobs := range engines {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			p := NewPersistence(blobs)

			loaded, err := p.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, loaded)

			require.NoError(t, p.Save(ctx, Snapshot{Timestamp: 1}))
			require.NoError(t, p.Save(ctx, sampleSnapshot()))

			loaded, err = p.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, loaded)

			want := sampleSnapshot()
			assert.ElementsMatch(t, want.Subjects, loaded.Subjects)
			assert.ElementsMatch(t, want.Exams, loaded.Exams)
			assert.Equal(t, want.Timestamp, loaded.Timestamp)
		})
	}
}

func TestPersistenceWireFormat(t *testing.T) {
	blobs := NewMemoryBlobStore()
	p := NewPersistence(blobs)

	require.NoError(t, p.Save(context.Background(), Snapshot{Timestamp: 42}))

	blob, err := blobs.Get(context.Background(), "scheduleData")
	require.NoError(t, err)
	assert.JSONEq(t, `{"subjects":[],"exams":[],"timestamp":42}`, string(blob))
}

func TestPersistenceFailures(t *testing.T) {
	ctx := context.Background()

	p := NewPersistence(failingBlobStore{})
	assert.ErrorIs(t, p.Save(ctx, sampleSnapshot()), ErrPersistence)
	_, err := p.Load(ctx)
	assert.ErrorIs(t, err, ErrPersistence)

	blobs := NewMemoryBlobStore()
	require.NoError(t, blobs.Put(ctx, snapshotKey, []byte("{not json")))
	_, err = NewPersistence(blobs).Load(ctx)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestStoreReloadsFromSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "database.db")

	blobs, err := NewSQLiteBlobStore(ctx, dbPath)
	require.NoError(t, err)

	first := NewStore(NewPersistence(blobs), discardLogger(), WithClock(func() time.Time { return testNow }))
	first.Load(ctx)
	subject, err := first.AddSubject(Subject{Name: "Math", Teacher: "T", Time: "08:00", Days: []Weekday{Friday}})
	require.NoError(t, err)
	exam, err := first.AddExam(Exam{Name: "Final", Date: "2026-06-01", Time: "10:00", Location: "Hall"})
	require.NoError(t, err)
	first.Close()
	require.NoError(t, blobs.Close())

	blobs, err = NewSQLiteBlobStore(ctx, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { blobs.Close() })

	later := testNow.Add(30 * 24 * time.Hour)
	second := NewStore(NewPersistence(blobs), discardLogger(), WithClock(func() time.Time { return later }))
	t.Cleanup(second.Close)
	second.Load(ctx)

	assert.Equal(t, []Subject{subject}, second.Subjects())
	assert.Equal(t, []Exam{exam}, second.Exams())

	expired := NewStore(NewPersistence(blobs), discardLogger(), WithClock(func() time.Time {
		return testNow.Add(RetentionWindow + time.Hour)
	}))
	t.Cleanup(expired.Close)
	expired.Load(ctx)

	assert.Empty(t, expired.Subjects())
	assert.Empty(t, expired.Exams())
}

func TestRedisBlobStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	blobs, err := NewRedisBlobStore(ctx, &redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer blobs.Close()

	_, err = blobs.Get(ctx, "scheduleData")
	assert.ErrorIs(t, err, ErrBlobNotFound)

	require.NoError(t, NewPersistence(blobs).Save(ctx, sampleSnapshot()))
	assert.True(t, mr.Exists("studysched:scheduleData"))
	assert.False(t, mr.Exists("scheduleData"))

	mr.Close()
	_, err = NewRedisBlobStore(ctx, &redis.Options{Addr: mr.Addr()})
	assert.Error(t, err)
}

func TestOpenBlobStoreMemory(t *testing.T) {
	cfg := &Config{}
	cfg.Store.Driver = "memory"
	cfg.Store.Timeout = 1

	blobs, err := OpenBlobStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryBlobStore{}, blobs)

	cfg.Store.Driver = "etcd"
	_, err = OpenBlobStore(context.Background(), cfg)
	assert.Error(t, err)
}
