package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LoadBookmarks reads the persisted bookmarks, replacing the in-memory set.
// Entries with an unreadable timestamp are dropped. A missing blob is an
// empty set.
func (s *Store) LoadBookmarks(ctx context.Context) error {
	s.bmMu.Lock()
	defer s.bmMu.Unlock()

	data, ok, err := s.blobs.GetBlob(ctx, BookmarksKey)
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}

	var items []SavedQuery
	if ok && len(data) > 0 {
		kept, dropped, err := DecodeBookmarks(data)
		if err != nil {
			return fmt.Errorf("decode bookmarks: %w", err)
		}
		for _, id := range dropped {
			s.logger.Warn("dropping bookmark with invalid timestamp", slog.String("id", id))
		}
		items = kept
	}

	s.mu.Lock()
	s.bookmarks = items
	s.mu.Unlock()

	s.logger.Debug("bookmarks loaded", slog.Int("count", len(items)))
	return nil
}

// Bookmarks returns a copy of the bookmarks, newest first.
func (s *Store) Bookmarks() []SavedQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.bookmarks)
}

// Bookmark returns the bookmark with id.
func (s *Store) Bookmark(id string) (SavedQuery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookmarks {
		if b.ID == id {
			return b, true
		}
	}
	return SavedQuery{}, false
}

// SaveBookmark adds a bookmark and writes the collection through. On a
// failed write the bookmark stays in memory and a *PersistenceError is
// returned alongside it.
func (s *Store) SaveBookmark(ctx context.Context, name, naturalQuery, sql string) (SavedQuery, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedQuery{}, ErrEmptyName
	}
	if naturalQuery == "" || sql == "" {
		return SavedQuery{}, ErrNothingToSave
	}

	s.bmMu.Lock()
	defer s.bmMu.Unlock()

	q := SavedQuery{
		ID:           uuid.NewString(),
		Name:         name,
		NaturalQuery: naturalQuery,
		SQL:          sql,
		SavedAt:      time.Now(),
	}

	s.mu.Lock()
	s.bookmarks = slices.Insert(s.bookmarks, 0, q)
	snapshot := slices.Clone(s.bookmarks)
	s.mu.Unlock()

	if err := s.writeBookmarks(ctx, "save", snapshot); err != nil {
		return q, err
	}
	s.logger.Debug("bookmark saved", slog.String("id", q.ID), slog.String("name", name))
	return q, nil
}

// DeleteBookmark removes the bookmark with id and writes the collection
// through. Deleting an unknown id still rewrites the collection and is not
// an error.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	s.bmMu.Lock()
	defer s.bmMu.Unlock()

	s.mu.Lock()
	s.bookmarks = slices.DeleteFunc(s.bookmarks, func(b SavedQuery) bool {
		return b.ID == id
	})
	snapshot := slices.Clone(s.bookmarks)
	s.mu.Unlock()

	if err := s.writeBookmarks(ctx, "delete", snapshot); err != nil {
		return err
	}
	s.logger.Debug("bookmark deleted", slog.String("id", id))
	return nil
}

func (s *Store) writeBookmarks(ctx context.Context, op string, items []SavedQuery) error {
	data, err := EncodeBookmarks(items)
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	if err := s.blobs.PutBlob(ctx, BookmarksKey, data); err != nil {
		s.logger.Warn("bookmark write-through failed",
			slog.String("op", op),
			slog.String("error", err.Error()))
		return &PersistenceError{Op: op, Err: err}
	}
	return nil
}
