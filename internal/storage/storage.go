// Package storage is the key-value persistence port behind the game store.
// Every backend stores one JSON object per key; KV layers the
// read-merge-write contract on top of it.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"fishyday/internal/config"
	"fishyday/internal/db"
)

var (
	ErrNotFound       = errors.New("key not found")
	ErrMalformed      = errors.New("stored value is not a JSON object")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Blob is a stored JSON object keyed by its top-level fields.
type Blob map[string]json.RawMessage

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Port is what the game store consumes. Write merges partial into the stored
// object field by field (last write wins) and returns the merged result.
type Port interface {
	Read(ctx context.Context, key string) (Blob, error)
	Write(ctx context.Context, key string, partial Blob) (Blob, error)
}

type KV struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *KV {
	return &KV{backend: backend}
}

func (k *KV) Read(ctx context.Context, key string) (Blob, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.read(ctx, key)
}

func (k *KV) read(ctx context.Context, key string) (Blob, error) {
	raw, err := k.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var out Blob
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, key)
	}
	return out, nil
}

func (k *KV) Write(ctx context.Context, key string, partial Blob) (Blob, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	merged, err := k.read(ctx, key)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrMalformed):
		merged = Blob{}
	default:
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	for field, value := range partial {
		merged[field] = value
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := k.backend.Put(ctx, key, raw); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	return merged, nil
}

func (k *KV) Close() error {
	return k.backend.Close()
}

// Open builds the backend selected by cfg.Storage.
func Open(ctx context.Context, cfg config.Env) (*KV, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return New(NewMemory()), nil
	case config.StorageFile, "":
		b, err := NewFile(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case config.StorageSQLite:
		b, err := OpenSQLite(filepath.Join(cfg.DataDir, "fishyday.db"))
		if err != nil {
			return nil, err
		}
		return New(b), nil
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		b, err := NewPostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return New(b), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage)
	}
}
