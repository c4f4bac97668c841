package client

import (
	"context"
	"errors"
	"sync"

	"fintrack/internal/core"
)

// ErrStaleFetch is returned by Fetch when a newer fetch superseded it
// before its response arrived; the stale response is discarded.
var ErrStaleFetch = errors.New("stale fetch response discarded")

// API is the surface the store needs from the transaction client.
type API interface {
	FetchTransactions(ctx context.Context, f core.Filter) (ListResult, error)
	CreateTransaction(ctx context.Context, in core.Input) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in core.Input) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// State is the store's view of the world. Items are most-recent-first
// as returned by the server; Summary is recomputed on every change to
// Items.
type State struct {
	Items   []core.Transaction
	Loading bool
	Err     *APIError
	Filters core.Filter
	Total   int64
	Message string
	Success bool
	Summary core.Summary
}

// Store is a mutable state container mediating all API calls. It is
// safe for concurrent use; subscribers observe every state change.
type Store struct {
	api API

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int

	// fetchGen orders fetches so that only the latest one may commit
	// its response (last request wins).
	fetchGen uint64
}

func NewStore(api API) *Store {
	return &Store{
		api: api,
		state: State{
			Filters: core.Filter{}.Normalize(0),
		},
		subs: make(map[int]func(State)),
	}
}

// Subscribe registers a callback invoked after every state change with
// a snapshot. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	snap := s.state
	snap.Items = make([]core.Transaction, len(s.state.Items))
	copy(snap.Items, s.state.Items)
	return snap
}

// notifyLocked snapshots state and schedules subscriber callbacks.
// Callbacks run without the lock held.
func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}

	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
	s.mu.Lock()
}

// SetFilters replaces the active filter criteria. The next Fetch uses
// them; any in-flight fetch is invalidated.
func (s *Store) SetFilters(f core.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Filters = f.Normalize(0)
	s.fetchGen++
	s.notifyLocked()
}

// Filters returns the active filter criteria.
func (s *Store) Filters() core.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Filters
}

// Fetch loads the list for the current filters. Only the most recent
// fetch may commit its result; superseded calls return ErrStaleFetch.
func (s *Store) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	f := s.state.Filters
	s.state.Loading = true
	s.state.Message = ""
	s.notifyLocked()
	s.mu.Unlock()

	result, err := s.api.FetchTransactions(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.fetchGen {
		return ErrStaleFetch
	}

	if err != nil {
		s.state.Loading = false
		s.state.Success = false
		s.state.Err = asAPIError(err)
		s.state.Items = nil
		s.state.Total = 0
		s.state.Summary = core.Summarize(nil)
		s.notifyLocked()
		return err
	}

	s.state.Loading = false
	s.state.Success = true
	s.state.Err = nil
	s.state.Items = result.Items
	s.state.Total = result.Total
	if result.Page > 0 {
		s.state.Filters.Page = result.Page
	}
	if result.Limit > 0 {
		s.state.Filters.Limit = result.Limit
	}
	s.state.Message = result.Message
	if s.state.Message == "" {
		s.state.Message = "transactions fetched successfully"
	}
	s.state.Summary = core.Summarize(s.state.Items)
	s.notifyLocked()
	return nil
}

// Create submits a new transaction and appends it to the local list on
// success. The global loading flag is not touched.
func (s *Store) Create(ctx context.Context, in core.Input) error {
	s.clearMessage()

	tx, err := s.api.CreateTransaction(ctx, in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state.Success = false
		s.state.Err = asAPIError(err)
		s.notifyLocked()
		return err
	}

	s.state.Success = true
	s.state.Err = nil
	s.state.Items = append(s.state.Items, tx)
	s.state.Total++
	s.state.Message = "transaction created successfully"
	s.state.Summary = core.Summarize(s.state.Items)
	s.notifyLocked()
	return nil
}

// Update submits a partial payload and replaces the matching item in
// place on success.
func (s *Store) Update(ctx context.Context, id string, in core.Input) error {
	s.clearMessage()

	tx, err := s.api.UpdateTransaction(ctx, id, in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state.Success = false
		s.state.Err = asAPIError(err)
		s.notifyLocked()
		return err
	}

	s.state.Success = true
	s.state.Err = nil
	for i := range s.state.Items {
		if s.state.Items[i].ID == tx.ID {
			s.state.Items[i] = tx
			break
		}
	}
	s.state.Message = "transaction updated successfully"
	s.state.Summary = core.Summarize(s.state.Items)
	s.notifyLocked()
	return nil
}

// Delete removes the transaction remotely and from the local list on
// success.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.clearMessage()

	err := s.api.DeleteTransaction(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state.Success = false
		s.state.Err = asAPIError(err)
		s.notifyLocked()
		return err
	}

	s.state.Success = true
	s.state.Err = nil
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			break
		}
	}
	if s.state.Total > 0 {
		s.state.Total--
	}
	s.state.Message = "transaction deleted successfully"
	s.state.Summary = core.Summarize(s.state.Items)
	s.notifyLocked()
	return nil
}

func (s *Store) clearMessage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Message = ""
	s.notifyLocked()
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{StatusCode: 0, Message: err.Error()}
}
