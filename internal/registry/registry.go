// Package registry holds the process-wide mapping from account email to its
// most recently fetched message window. It is the only shared mutable state
// in the service, so every operation serializes on the registry mutex.
package registry

import (
	"sync"

	"github.com/talkport/mailfeed/internal/models"
)

type Registry struct {
	mu       sync.RWMutex
	accounts map[string]*models.ConnectedAccount
	order    []string // insertion order; Remove deletes, never reorders
}

func New() *Registry {
	return &Registry{
		accounts: make(map[string]*models.ConnectedAccount),
	}
}

// Upsert inserts the account on first link and replaces its message list
// wholesale on re-link. Linking the same email twice never yields two entries.
func (r *Registry) Upsert(email string, messages []models.NormalizedMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if acc, ok := r.accounts[email]; ok {
		acc.Messages = messages
		return
	}
	r.accounts[email] = &models.ConnectedAccount{Email: email, Messages: messages}
	r.order = append(r.order, email)
}

// List returns a snapshot of all connected accounts in insertion order.
// Message slices are copied so callers cannot alias registry state.
func (r *Registry) List() []models.ConnectedAccount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.ConnectedAccount, 0, len(r.order))
	for _, email := range r.order {
		acc := r.accounts[email]
		msgs := make([]models.NormalizedMessage, len(acc.Messages))
		copy(msgs, acc.Messages)
		out = append(out, models.ConnectedAccount{Email: acc.Email, Messages: msgs})
	}
	return out
}

// Remove deletes the account if present. Removing an absent email is a no-op.
func (r *Registry) Remove(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[email]; !ok {
		return
	}
	delete(r.accounts, email)
	for i, e := range r.order {
		if e == email {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of connected accounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
