package testsupport

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-pubtemplate/pkg/api"
	"github.com/goliatone/go-pubtemplate/pkg/model"
)

// MemoryStore is an in-memory api.Store. Failures can be injected per
// operation through the exported error fields; Calls counts invocations by
// operation name.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	templates map[int64]model.Template

	CreateErr error
	UpdateErr error
	DeleteErr error
	ListErr   error

	Calls map[string]int
}

var _ api.Store = (*MemoryStore)(nil)

// NewMemoryStore seeds the store with templates. Seeds without an id get
// one assigned.
func NewMemoryStore(seed ...model.Template) *MemoryStore {
	s := &MemoryStore{
		templates: make(map[int64]model.Template),
		Calls:     make(map[string]int),
	}
	for _, tpl := range seed {
		if tpl.ID == 0 {
			s.nextID++
			tpl.ID = s.nextID
		}
		if tpl.ID > s.nextID {
			s.nextID = tpl.ID
		}
		s.templates[tpl.ID] = tpl.Clone()
	}
	return s
}

func (s *MemoryStore) CreateTemplate(_ context.Context, doc model.Template) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["create"]++
	if s.CreateErr != nil {
		return 0, s.CreateErr
	}
	s.nextID++
	doc = doc.Clone()
	doc.ID = s.nextID
	s.templates[doc.ID] = doc
	return doc.ID, nil
}

func (s *MemoryStore) UpdateTemplate(_ context.Context, id int64, doc model.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["update"]++
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.templates[id]; !ok {
		return &api.APIError{Method: "PUT", Path: fmt.Sprintf("/templates/%d", id), Status: 404}
	}
	doc = doc.Clone()
	doc.ID = id
	s.templates[id] = doc
	return nil
}

func (s *MemoryStore) DeleteTemplate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["delete"]++
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	if _, ok := s.templates[id]; !ok {
		return &api.APIError{Method: "DELETE", Path: fmt.Sprintf("/templates/%d", id), Status: 404}
	}
	delete(s.templates, id)
	return nil
}

func (s *MemoryStore) ListTemplates(_ context.Context, ownerID int64) ([]model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["list"]++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := []model.Template{}
	for _, tpl := range s.templates {
		if tpl.TaskID == ownerID {
			out = append(out, tpl.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetTemplate(_ context.Context, id int64) (model.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls["get"]++
	tpl, ok := s.templates[id]
	if !ok {
		return model.Template{}, &api.APIError{Method: "GET", Path: fmt.Sprintf("/templates/%d", id), Status: 404}
	}
	return tpl.Clone(), nil
}

// Count reports how many times op was called.
func (s *MemoryStore) Count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[op]
}
