package client

import (
	"context"
	"strings"
	"sync"

	"github.com/ejjays/assets-management/models"
)

// Store is the client-side copy of the asset collection. Reads are served
// from the cache; mutations go to the API first and touch the cache only
// once the call succeeded.
type Store struct {
	api API

	mu       sync.RWMutex
	assets   []models.Asset
	inflight int
	issued   uint64 // last refresh token handed out
	applied  uint64 // token of the refresh whose result is cached

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

func NewStore(api API) *Store {
	return &Store{api: api, assets: []models.Asset{}, subs: make(map[int]func())}
}

// Subscribe registers fn to run after every cache or loading change and
// returns a function that removes it.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Assets returns a copy of the cached collection.
func (s *Store) Assets() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.assets)
}

// Loading is true while at least one refresh is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Refresh replaces the cache with the server's collection. When refreshes
// overlap, a response is applied only if no later-issued refresh has already
// been applied, so a slow stale answer cannot overwrite a newer one.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	token := s.issued
	s.inflight++
	s.mu.Unlock()
	s.notify()

	assets, err := s.api.List(ctx)

	s.mu.Lock()
	s.inflight--
	if err == nil && token > s.applied {
		s.assets = cloneAll(assets)
		s.applied = token
	}
	s.mu.Unlock()
	s.notify()

	return err
}

func (s *Store) Create(ctx context.Context, draft models.AssetDraft) (models.Asset, error) {
	a, err := s.api.Create(ctx, draft)
	if err != nil {
		return models.Asset{}, err
	}

	s.mu.Lock()
	s.assets = append(s.assets, clone(a))
	s.mu.Unlock()
	s.notify()
	return a, nil
}

// Update merges patch into the cached asset after the server accepted it.
// Fields are trimmed first so the cache holds what the server stored.
func (s *Store) Update(ctx context.Context, id string, patch models.AssetPatch) error {
	patch = patch.Trimmed()
	if err := s.api.Update(ctx, id, patch); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.assets {
		if s.assets[i].ID == id {
			patch.Apply(&s.assets[i])
			break
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.assets[:0:0]
	for _, a := range s.assets {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.assets = kept
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) FindByID(id string) (models.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if a.ID == id {
			return clone(a), true
		}
	}
	return models.Asset{}, false
}

func (s *Store) FindByCategory(category string) []models.Asset {
	return s.filter(func(a models.Asset) bool { return a.Category == category })
}

func (s *Store) FindByStatus(status string) []models.Asset {
	return s.filter(func(a models.Asset) bool { return a.Status == status })
}

// Search matches query case-insensitively against name, id, category and
// assignee. An empty query matches everything.
func (s *Store) Search(query string) []models.Asset {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.filter(func(a models.Asset) bool {
		return strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.ID), q) ||
			strings.Contains(strings.ToLower(a.Category), q) ||
			strings.Contains(strings.ToLower(a.AssignedTo), q)
	})
}

func (s *Store) filter(keep func(models.Asset) bool) []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Asset{}
	for _, a := range s.assets {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	return out
}

func clone(a models.Asset) models.Asset {
	if a.History != nil {
		a.History = append([]models.HistoryEntry(nil), a.History...)
	}
	return a
}

func cloneAll(in []models.Asset) []models.Asset {
	out := make([]models.Asset, len(in))
	for i, a := range in {
		out[i] = clone(a)
	}
	return out
}
