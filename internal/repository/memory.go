package repository

import (
	"context"
	"sync"
	"time"

	"github.com/perfil-app/perfil-api/internal/model"
)

// MemoryDSN selects the in-process store instead of a SQL database.
const MemoryDSN = "memory://"

// MemoryUserRepository keeps users in process memory. Intended for local
// development and tests; data is lost on restart.
type MemoryUserRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]model.User
	byEmail map[string]int64
	now     func() time.Time
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[int64]model.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

// Create checks and inserts under one lock, so concurrent creates of the
// same email cannot both succeed.
func (r *MemoryUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}

	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = r.now().UTC().Truncate(time.Second)

	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Close satisfies io.Closer; there is nothing to release.
func (r *MemoryUserRepository) Close() error {
	return nil
}
