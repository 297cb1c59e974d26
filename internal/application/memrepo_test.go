package application_test

import (
	"context"
	"strings"
	"sync"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
)

// memRepo is an in-memory UserRepository with the same optimistic
// versioning semantics as the Postgres implementation.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	cp := *u
	cp.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	return &cp
}

func (r *memRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	u.Version = 1
	r.users[u.ID] = cloneUser(u)
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *memRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Version != u.Version {
		return repository.ErrVersionConflict
	}
	u.Version++
	r.users[u.ID] = cloneUser(u)
	return nil
}

var _ repository.UserRepository = (*memRepo)(nil)

// recordingNotifier captures outbound email requests.
type recordingNotifier struct {
	mu            sync.Mutex
	verifications []string // emails
	resets        []string
	welcomes      []string
	lastToken     string
}

func (n *recordingNotifier) SendEmailVerification(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifications = append(n.verifications, email)
	n.lastToken = token
	return nil
}

func (n *recordingNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, email)
	n.lastToken = token
	return nil
}

func (n *recordingNotifier) SendWelcomeEmail(_ context.Context, email, _, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, email)
	return nil
}
