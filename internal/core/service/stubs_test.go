package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/apiforge/apiforge-server/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byEmail map[string]*domain.User
	findErr error
	seq     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.byEmail[stored.Email] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubSessionCache struct {
	users map[string]*domain.User
	gets  int
	sets  int
}

func newStubSessionCache() *stubSessionCache {
	return &stubSessionCache{users: make(map[string]*domain.User)}
}

func (c *stubSessionCache) Get(_ context.Context, id string) (*domain.User, error) {
	c.gets++
	return cloneUser(c.users[id]), nil
}

func (c *stubSessionCache) Set(_ context.Context, u *domain.User) error {
	c.sets++
	c.users[u.ID] = cloneUser(u)
	return nil
}

type stubCollectionRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.Collection
	requests *stubRequestRepo // for counts and cascade
	seq      int
	clock    time.Time
}

func newStubCollectionRepo(requests *stubRequestRepo) *stubCollectionRepo {
	return &stubCollectionRepo{
		byID:     make(map[string]*domain.Collection),
		requests: requests,
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *stubCollectionRepo) Create(_ context.Context, c *domain.Collection) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.clock = r.clock.Add(time.Second)
	stored := *c
	stored.ID = fmt.Sprintf("col-%03d", r.seq)
	stored.CreatedAt = r.clock
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubCollectionRepo) FindByID(_ context.Context, id string) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	out := *c
	return &out, nil
}

func (r *stubCollectionRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Collection{}
	for _, c := range r.byID {
		if c.OwnerID != ownerID {
			continue
		}
		item := *c
		if r.requests != nil {
			item.RequestCount = int64(r.requests.countFor(c.ID))
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *stubCollectionRepo) Rename(_ context.Context, id, name string) (*domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}
	c.Name = name
	out := *c
	return &out, nil
}

func (r *stubCollectionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCollectionNotFound
	}
	delete(r.byID, id)
	if r.requests != nil {
		r.requests.deleteFor(id)
	}
	return nil
}

type stubRequestRepo struct {
	mu    sync.Mutex
	byID  map[string]*domain.APIRequest
	seq   int
	clock time.Time
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{
		byID:  make(map[string]*domain.APIRequest),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.clock = r.clock.Add(time.Second)
	stored := *req
	stored.ID = fmt.Sprintf("req-%03d", r.seq)
	stored.CreatedAt = r.clock
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.APIRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	out := *req
	return &out, nil
}

func (r *stubRequestRepo) ListByCollection(_ context.Context, collectionID string) ([]domain.APIRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.APIRequest{}
	for _, req := range r.byID {
		if req.CollectionID == collectionID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *stubRequestRepo) Update(_ context.Context, req *domain.APIRequest) (*domain.APIRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[req.ID]; !ok {
		return nil, domain.ErrRequestNotFound
	}
	stored := *req
	r.byID[req.ID] = &stored
	out := stored
	return &out, nil
}

func (r *stubRequestRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRequestRepo) countFor(collectionID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.byID {
		if req.CollectionID == collectionID {
			n++
		}
	}
	return n
}

func (r *stubRequestRepo) deleteFor(collectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, req := range r.byID {
		if req.CollectionID == collectionID {
			delete(r.byID, id)
		}
	}
}
