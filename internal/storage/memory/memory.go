// Package memory is an in-process transaction store, used as the default
// development backend and by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type Store struct {
	mu    sync.Mutex
	seq   uint64
	items []core.Transaction
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// nextID returns a monotonically increasing 24-hex-digit id. The fixed
// width keeps lexicographic order equal to insertion order, which the
// descending id tiebreak relies on.
func (s *Store) nextID() string {
	s.seq++
	return fmt.Sprintf("%024x", s.seq)
}

func (s *Store) List(_ context.Context, f core.Filter) ([]core.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []core.Transaction
	for _, tx := range s.items {
		if f.Matches(tx) {
			matched = append(matched, tx)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	skip, take := f.Window()
	if skip >= len(matched) {
		return []core.Transaction{}, total, nil
	}
	end := skip + take
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]core.Transaction, end-skip)
	copy(page, matched[skip:end])
	return page, total, nil
}

func (s *Store) Create(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	tx.ID = s.nextID()
	tx.CreatedAt = now
	tx.UpdatedAt = now
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) Update(_ context.Context, id string, p core.Patch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.items {
		if tx.ID != id {
			continue
		}
		if p.Type != nil {
			tx.Type = *p.Type
		}
		if p.Amount != nil {
			tx.Amount = *p.Amount
		}
		if p.Description != nil {
			tx.Description = *p.Description
		}
		if p.Category != nil {
			tx.Category = *p.Category
		}
		if p.Date != nil {
			tx.Date = *p.Date
		}
		tx.UpdatedAt = time.Now().UTC()
		s.items[i] = tx
		return tx, nil
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, tx := range s.items {
		if tx.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.items {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (s *Store) Close() error { return nil }
