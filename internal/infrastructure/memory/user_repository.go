package memory

import (
	"sync"
	"time"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	"github.com/oksasatya/go-marketplace-api/internal/domain/repository"
)

// UserRepository keeps users in process memory, in insertion order.
// Ids come from a counter that survives deletions, so they are never
// reused.
type UserRepository struct {
	mu     sync.RWMutex
	users  []*entity.User
	nextID int64
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	r.nextID++
	u.ID = r.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	r.users = append(r.users, &cp)
	return nil
}

func (r *UserRepository) FindByID(id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.users {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) FindByUsername(username string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.users {
		if e.Username == username {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) ListAll() ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, e := range r.users {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
