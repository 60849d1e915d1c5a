package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// snapshotKey is the single logical key the schedule lives under.
const snapshotKey = "scheduleData"

// BlobStore is a key/value engine holding opaque blobs.
type BlobStore interface {
	Put(ctx context.Context, key string, blob []byte) error
	// Get returns ErrBlobNotFound when key has never been written.
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// SnapshotStore is what the schedule store persists through.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	// Load returns a nil snapshot when nothing has been saved yet.
	Load(ctx context.Context) (*Snapshot, error)
}

type Persistence struct {
	blobs BlobStore
}

func NewPersistence(blobs BlobStore) *Persistence {
	return &Persistence{blobs: blobs}
}

func (p *Persistence) Save(ctx context.Context, snapshot Snapshot) error {
	if snapshot.Subjects == nil {
		snapshot.Subjects = []Subject{}
	}
	if snapshot.Exams == nil {
		snapshot.Exams = []Exam{}
	}

	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: failed to encode snapshot: %v", ErrPersistence, err)
	}
	if err := p.blobs.Put(ctx, snapshotKey, blob); err != nil {
		return fmt.Errorf("%w: failed to save snapshot: %w", ErrPersistence, err)
	}
	return nil
}

func (p *Persistence) Load(ctx context.Context) (*Snapshot, error) {
	blob, err := p.blobs.Get(ctx, snapshotKey)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to load snapshot: %w", ErrPersistence, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: failed to decode snapshot: %v", ErrPersistence, err)
	}
	return &snapshot, nil
}

// MemoryBlobStore keeps blobs in process memory. Nothing survives the
// process; it backs dry runs and tests.
type MemoryBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *MemoryBlobStore) Put(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (m *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (m *MemoryBlobStore) Close() error {
	return nil
}

// OpenBlobStore connects to the engine selected by STORE_DRIVER.
func OpenBlobStore(ctx context.Context, cfg *Config) (BlobStore, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Store.Timeout)*time.Second)
	defer cancel()

	switch cfg.Store.Driver {
	case "sqlite":
		return NewSQLiteBlobStore(ctx, cfg.Store.Path)
	case "postgres":
		return NewPostgresBlobStore(ctx, cfg.Store.DSN, cfg.Store.MaxOpenConns)
	case "redis":
		return NewRedisBlobStore(ctx, &redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case "memory":
		return NewMemoryBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
