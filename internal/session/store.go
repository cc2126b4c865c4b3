package session

import (
	"context"
	"log/slog"
	"sync"
)

// BookmarksKey names the persisted bookmark blob.
const BookmarksKey = "text2sql_saved_queries"

// BlobStore persists named blobs. Implementations must be safe for
// concurrent use.
type BlobStore interface {
	// GetBlob returns the blob and whether it exists.
	GetBlob(ctx context.Context, name string) ([]byte, bool, error)
	// PutBlob replaces the blob wholesale.
	PutBlob(ctx context.Context, name string, data []byte) error
}

// Config configures a Store.
type Config struct {
	// Blobs persists bookmarks. Defaults to an in-memory store.
	Blobs  BlobStore
	Logger *slog.Logger
}

// Store is the state of one session. All methods are safe for concurrent use.
type Store struct {
	logger *slog.Logger
	blobs  BlobStore

	mu            sync.RWMutex
	history       []HistoryItem
	bookmarks     []SavedQuery
	schema        []TableInfo
	schemaLoading bool
	display       Display

	// bmMu serializes bookmark mutations across their write-through.
	bmMu sync.Mutex
}

// New creates an empty Store.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	blobs := cfg.Blobs
	if blobs == nil {
		blobs = NewMemoryBlobs()
	}
	return &Store{
		logger: logger,
		blobs:  blobs,
		schema: []TableInfo{},
	}
}

// MemoryBlobs is a BlobStore held in memory.
type MemoryBlobs struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBlobs creates an empty in-memory BlobStore.
func NewMemoryBlobs() *MemoryBlobs {
	return &MemoryBlobs{blobs: make(map[string][]byte)}
}

// GetBlob implements BlobStore.
func (m *MemoryBlobs) GetBlob(_ context.Context, name string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// PutBlob implements BlobStore.
func (m *MemoryBlobs) PutBlob(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}
