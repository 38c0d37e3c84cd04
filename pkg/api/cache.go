package api

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// CachedStore caches ListTemplates per owner and invalidates the affected
// owner after every successful write made through it.
type CachedStore struct {
	next   Store
	logger *zap.Logger

	mu     sync.RWMutex
	lists  map[int64][]model.Template
	owners map[int64]int64
}

var _ Store = (*CachedStore)(nil)

// CacheOption customises a CachedStore.
type CacheOption func(*CachedStore)

// WithCacheLogger sets the logger used for cache traces.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(s *CachedStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCachedStore wraps next.
func NewCachedStore(next Store, options ...CacheOption) *CachedStore {
	s := &CachedStore{
		next:   next,
		logger: zap.NewNop(),
		lists:  make(map[int64][]model.Template),
		owners: make(map[int64]int64),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateTemplate creates through the wrapped store and drops the owner's
// cached list.
func (s *CachedStore) CreateTemplate(ctx context.Context, doc model.Template) (int64, error) {
	id, err := s.next.CreateTemplate(ctx, doc)
	if err != nil {
		return 0, err
	}
	s.Invalidate(doc.TaskID)
	return id, nil
}

// UpdateTemplate updates through the wrapped store and drops the owner's
// cached list.
func (s *CachedStore) UpdateTemplate(ctx context.Context, id int64, doc model.Template) error {
	if err := s.next.UpdateTemplate(ctx, id, doc); err != nil {
		return err
	}
	s.invalidateTemplate(id, doc.TaskID)
	return nil
}

// DeleteTemplate deletes through the wrapped store. The owning list is
// dropped when known, otherwise every cached list is.
func (s *CachedStore) DeleteTemplate(ctx context.Context, id int64) error {
	if err := s.next.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.invalidateTemplate(id, 0)
	return nil
}

// GetTemplate is never cached.
func (s *CachedStore) GetTemplate(ctx context.Context, id int64) (model.Template, error) {
	return s.next.GetTemplate(ctx, id)
}

// ListTemplates serves the owner's list from cache, loading it on a miss.
func (s *CachedStore) ListTemplates(ctx context.Context, ownerID int64) ([]model.Template, error) {
	s.mu.RLock()
	cached, ok := s.lists[ownerID]
	s.mu.RUnlock()
	if ok {
		s.logger.Debug("api cache: hit", zap.Int64("owner", ownerID))
		return cloneList(cached), nil
	}
	return s.Refresh(ctx, ownerID)
}

// Refresh reloads the owner's list from the wrapped store.
func (s *CachedStore) Refresh(ctx context.Context, ownerID int64) ([]model.Template, error) {
	list, err := s.next.ListTemplates(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lists[ownerID] = cloneList(list)
	for _, tpl := range list {
		if tpl.ID > 0 {
			s.owners[tpl.ID] = ownerID
		}
	}
	s.mu.Unlock()

	s.logger.Debug("api cache: loaded", zap.Int64("owner", ownerID), zap.Int("templates", len(list)))
	return cloneList(list), nil
}

// Invalidate drops the cached list of ownerID.
func (s *CachedStore) Invalidate(ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropOwner(ownerID)
}

// InvalidateAll drops every cached list.
func (s *CachedStore) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = make(map[int64][]model.Template)
	s.owners = make(map[int64]int64)
}

func (s *CachedStore) invalidateTemplate(id, ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, ok := s.owners[id]
	switch {
	case ok:
		s.dropOwner(known)
		if ownerID > 0 && ownerID != known {
			s.dropOwner(ownerID)
		}
	case ownerID > 0:
		s.dropOwner(ownerID)
	default:
		s.lists = make(map[int64][]model.Template)
		s.owners = make(map[int64]int64)
	}
}

func (s *CachedStore) dropOwner(ownerID int64) {
	for _, tpl := range s.lists[ownerID] {
		delete(s.owners, tpl.ID)
	}
	delete(s.lists, ownerID)
	s.logger.Debug("api cache: invalidated", zap.Int64("owner", ownerID))
}

func cloneList(list []model.Template) []model.Template {
	out := make([]model.Template, len(list))
	for i, tpl := range list {
		out[i] = tpl.Clone()
	}
	return out
}
