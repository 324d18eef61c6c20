// Package memory holds process-local implementations of the repository
// contracts, used when no Postgres DSN is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/classroom-kit/student-records/internal/domain"
	"github.com/classroom-kit/student-records/internal/repository"
)

// UserRepository is an in-memory repository.UserRepository.
type UserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

// NewUserRepository returns an empty store.
func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[int64]domain.User)}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.byID {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context) ([]domain.User, error) {
	return r.filter(func(domain.User) bool { return true }), nil
}

func (r *UserRepository) ListPending(_ context.Context) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return !u.Authorized }), nil
}

func (r *UserRepository) SetAuthorized(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user.Authorized = true
	r.byID[id] = user
	return &user, nil
}

func (r *UserRepository) SetPassword(_ context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.byID[id] = user
	return nil
}

func (r *UserRepository) DeleteByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, user := range r.byID {
		if user.Email == email {
			delete(r.byID, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) filter(keep func(domain.User) bool) []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := []domain.User{}
	for _, user := range r.byID {
		if keep(user) {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
