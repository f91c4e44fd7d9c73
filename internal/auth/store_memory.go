// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/postdeck/internal/platform/apperr"
)

// MemoryRepository is a [UserRepository] guarded by a read/write mutex.
type MemoryRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]*User
	byEmail map[string]int64
	now     func() time.Time
}

// NewMemoryRepository returns an empty repository. IDs start at 1.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID:  1,
		byID:    make(map[int64]*User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByID implements [UserRepository].
func (store *MemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	user, ok := store.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *user
	return &copied, nil
}

// FindByEmail implements [UserRepository].
func (store *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	id, ok := store.byEmail[emailKey(email)]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	copied := *store.byID[id]
	return &copied, nil
}

// Create implements [UserRepository]. The caller's struct receives the
// assigned ID and creation time.
func (store *MemoryRepository) Create(_ context.Context, user *User) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := store.byEmail[key]; exists {
		return apperr.Conflict("User already exists")
	}

	user.ID = store.nextID
	user.CreatedAt = store.now()
	store.nextID++

	copied := *user
	store.byID[user.ID] = &copied
	store.byEmail[key] = user.ID
	return nil
}

// Len reports how many accounts are stored.
func (store *MemoryRepository) Len() int {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return len(store.byID)
}
