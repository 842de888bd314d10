package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/media-request-service/internal/domain"
)

// MemoryStore keeps users and media requests in process-local maps. Its
// lifetime is the process lifetime and it is not shared between instances.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	usernames  map[string]string
	requests   map[string]*domain.MediaRequest
	trackingID map[string]string
	now        func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		usernames:  make(map[string]string),
		requests:   make(map[string]*domain.MediaRequest),
		trackingID: make(map[string]string),
		now:        time.Now,
	}
}

// Users exposes the store as a UserRepository.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// MediaRequests exposes the store as a MediaRequestRepository.
func (s *MemoryStore) MediaRequests() MediaRequestRepository { return memoryRequests{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.usernames[user.Username]; exists {
		return ErrDuplicateKey
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.s.users[user.ID]; exists {
		return ErrDuplicateKey
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now().UTC()
	}
	r.s.users[user.ID] = *user
	r.s.usernames[user.Username] = user.ID
	return nil
}

func (r memoryUsers) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return false, nil
	}
	delete(r.s.users, id)
	delete(r.s.usernames, u.Username)
	return true, nil
}

type memoryRequests struct{ s *MemoryStore }

func (r memoryRequests) List(_ context.Context) ([]domain.MediaRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.MediaRequest, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		out = append(out, *req.Clone())
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r memoryRequests) GetByID(_ context.Context, id string) (*domain.MediaRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return req.Clone(), nil
}

func (r memoryRequests) GetByTrackingID(_ context.Context, trackingID string) (*domain.MediaRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.trackingID[trackingID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.s.requests[id].Clone(), nil
}

func (r memoryRequests) Create(_ context.Context, request *domain.MediaRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.trackingID[request.TrackingID]; exists {
		return ErrDuplicateKey
	}
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if _, exists := r.s.requests[request.ID]; exists {
		return ErrDuplicateKey
	}
	now := r.s.now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	if request.UpdatedAt.IsZero() {
		request.UpdatedAt = request.CreatedAt
	}
	r.s.requests[request.ID] = request.Clone()
	r.s.trackingID[request.TrackingID] = request.ID
	return nil
}

func (r memoryRequests) Update(_ context.Context, id string, patch domain.MediaRequestPatch) (*domain.MediaRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(req, r.s.now().UTC())
	return req.Clone(), nil
}

func (r memoryRequests) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	req, ok := r.s.requests[id]
	if !ok {
		return false, nil
	}
	delete(r.s.requests, id)
	delete(r.s.trackingID, req.TrackingID)
	return true, nil
}

func sortByCreatedDesc(items []domain.MediaRequest) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
