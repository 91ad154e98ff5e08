package users

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps accounts in process memory. It is meant for
// development runs without a database and for tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.Account
	byName  map[string]string
	byEmail map[string]string
	now     func() time.Time
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]models.Account),
		byName:  make(map[string]string),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func emailKey(email string) string { return strings.ToLower(email) }

func (r *InMemoryRepository) FindByUsername(_ context.Context, userName string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byName[userName])
}

func (r *InMemoryRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.byEmail[emailKey(email)])
}

func (r *InMemoryRepository) lookup(id string) (*models.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (r *InMemoryRepository) Save(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[a.UserName]; ok && id != a.ID {
		return nil, fmt.Errorf("%w: username", common.ErrorAlreadyExists)
	}
	if id, ok := r.byEmail[emailKey(a.Email)]; ok && id != a.ID {
		return nil, fmt.Errorf("%w: email", common.ErrorAlreadyExists)
	}

	now := r.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
		a.CreatedAt = now
	} else {
		prev, ok := r.byID[a.ID]
		if !ok {
			return nil, common.ErrorNotFound
		}
		delete(r.byName, prev.UserName)
		delete(r.byEmail, emailKey(prev.Email))
	}
	a.UpdatedAt = now

	r.byID[a.ID] = *a
	r.byName[a.UserName] = a.ID
	r.byEmail[emailKey(a.Email)] = a.ID

	return a, nil
}
