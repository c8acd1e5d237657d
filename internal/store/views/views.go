// Package views provides the Badger-backed document store for public views.
//
// Views are JSON documents under `view:{id}`, with an owner index under
// `idx:views:owner:{userID}:{viewID}`. There is deliberately no slug index
// and no slug uniqueness constraint here: global slug uniqueness is the view
// service's job, enforced at write time with a full scan.
package views

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/threadkeep/threadkeep-server/internal/domain"
	"github.com/threadkeep/threadkeep-server/internal/id"
	"github.com/threadkeep/threadkeep-server/internal/store"
)

const (
	viewPrefix        = "view:"            // view:{id} → PublicView
	viewByOwnerPrefix = "idx:views:owner:" // idx:views:owner:{userID}:{viewID}
)

// Store wraps a Badger database holding public view documents.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the view store at the given directory.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping runs an empty read transaction to confirm the database is usable.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("view store is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// get unmarshals the value at key into out.
func (s *Store) get(key []byte, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
}

// CreateView persists a new view document, assigning its nanoid ID.
func (s *Store) CreateView(_ context.Context, view *domain.PublicView) error {
	if view.ID == "" {
		viewID, err := id.Generate("view")
		if err != nil {
			return fmt.Errorf("generate view id: %w", err)
		}
		view.ID = viewID
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(view)
		if err != nil {
			return fmt.Errorf("marshal view: %w", err)
		}

		if err := txn.Set([]byte(viewPrefix+view.ID), data); err != nil {
			return err
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", viewByOwnerPrefix, view.UserID, view.ID)
		if err := txn.Set(ownerIndexKey, []byte{}); err != nil {
			return fmt.Errorf("set owner index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("view created", "id", view.ID, "slug", view.Slug, "user_id", view.UserID)
	}
	return nil
}

// GetView retrieves a view by ID.
// Returns store.ErrNotFound if the view does not exist.
func (s *Store) GetView(_ context.Context, viewID string) (*domain.PublicView, error) {
	var view domain.PublicView
	if err := s.get([]byte(viewPrefix+viewID), &view); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get view: %w", err)
	}
	return &view, nil
}

// UpdateView replaces a view document keyed by its ID.
// Returns store.ErrNotFound if the view does not exist.
func (s *Store) UpdateView(ctx context.Context, view *domain.PublicView) error {
	// Existence check, and old owner for index maintenance.
	old, err := s.GetView(ctx, view.ID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(view)
		if err != nil {
			return fmt.Errorf("marshal view: %w", err)
		}

		if err := txn.Set([]byte(viewPrefix+view.ID), data); err != nil {
			return fmt.Errorf("set view: %w", err)
		}

		// Views never move between users in practice; keep the index
		// consistent anyway.
		if old.UserID != view.UserID {
			oldIndexKey := fmt.Appendf(nil, "%s%s:%s", viewByOwnerPrefix, old.UserID, view.ID)
			if err := txn.Delete(oldIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete old owner index: %w", err)
			}
			newIndexKey := fmt.Appendf(nil, "%s%s:%s", viewByOwnerPrefix, view.UserID, view.ID)
			if err := txn.Set(newIndexKey, []byte{}); err != nil {
				return fmt.Errorf("set owner index: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update view: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("view updated", "id", view.ID, "slug", view.Slug)
	}
	return nil
}

// DeleteView deletes a view and its owner index.
// Returns store.ErrNotFound if the view does not exist.
func (s *Store) DeleteView(ctx context.Context, viewID string) error {
	view, err := s.GetView(ctx, viewID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(viewPrefix + viewID)); err != nil {
			return fmt.Errorf("delete view: %w", err)
		}

		ownerIndexKey := fmt.Appendf(nil, "%s%s:%s", viewByOwnerPrefix, view.UserID, viewID)
		if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete owner index: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("delete view: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("view deleted", "id", viewID)
	}
	return nil
}

// ListViewsByUser returns all views owned by a user, via the owner index.
func (s *Store) ListViewsByUser(ctx context.Context, userID string) ([]*domain.PublicView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var viewIDs []string

	prefix := fmt.Appendf(nil, "%s%s:", viewByOwnerPrefix, userID)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys only
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())
			// idx:views:owner:{userID}:{viewID} — viewID after the last colon.
			if i := strings.LastIndexByte(key, ':'); i != -1 && i < len(key)-1 {
				viewIDs = append(viewIDs, key[i+1:])
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan owner index: %w", err)
	}

	views := make([]*domain.PublicView, 0, len(viewIDs))
	for _, viewID := range viewIDs {
		view, err := s.GetView(ctx, viewID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to get view from index", "view_id", viewID, "error", err)
			}
			continue
		}
		views = append(views, view)
	}

	return views, nil
}

// ListAllViews returns every view in the store, across all users. The slug
// uniqueness scan in the view service runs on this.
func (s *Store) ListAllViews(ctx context.Context) ([]*domain.PublicView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var views []*domain.PublicView

	prefix := []byte(viewPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var view domain.PublicView
				if err := json.Unmarshal(val, &view); err != nil {
					return err
				}
				views = append(views, &view)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	return views, nil
}

// GetViewBySlug finds the view holding a slug by scanning all view documents.
// Returns store.ErrNotFound when no view holds the slug. If the accepted
// create/create race ever leaves two views with one slug, whichever the scan
// reaches first wins.
func (s *Store) GetViewBySlug(ctx context.Context, slug string) (*domain.PublicView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found *domain.PublicView

	prefix := []byte(viewPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var view domain.PublicView
				if err := json.Unmarshal(val, &view); err != nil {
					return err
				}
				if view.Slug == slug {
					found = &view
				}
				return nil
			})
			if err != nil {
				return err
			}
			if found != nil {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan views for slug: %w", err)
	}

	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}
