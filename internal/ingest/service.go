// Package ingest ties the credential exchanger, the message fetcher and the
// account registry together: one linking event per call, all-or-nothing.
package ingest

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/talkport/mailfeed/internal/models"
	"github.com/talkport/mailfeed/internal/provider"
	"github.com/talkport/mailfeed/internal/registry"
	"github.com/talkport/mailfeed/internal/store"
)

// Service is the ingestion orchestrator consumed by the HTTP layer.
type Service struct {
	oauth    provider.OAuth
	fetcher  *Fetcher
	registry *registry.Registry
	users    store.UserStore // optional; nil when persistence is disabled
}

func NewService(oauth provider.OAuth, fetcher *Fetcher, reg *registry.Registry, users store.UserStore) *Service {
	return &Service{oauth: oauth, fetcher: fetcher, registry: reg, users: users}
}

// LinkAccount performs one linking event: exchange the authorization code,
// fetch the message window, upsert into the registry. Failures propagate
// unchanged and leave the registry untouched; the upsert is the single
// mutation point.
func (s *Service) LinkAccount(ctx context.Context, code string) (string, error) {
	creds, identity, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	messages, err := s.fetcher.FetchMessages(ctx, creds)
	if err != nil {
		return "", err
	}

	s.registry.Upsert(identity.Email, messages)
	log.Printf("linked account %s (%d messages)", identity.Email, len(messages))

	if s.users != nil {
		record := models.UserRecord{
			ID:       uuid.New(),
			GoogleID: identity.GoogleID,
			Name:     identity.Name,
			Email:    identity.Email,
			LinkedAt: time.Now().UTC(),
		}
		// Best effort: the registry is the source of truth for this
		// process, the store is an observer of successful links.
		if err := s.users.SaveUser(ctx, record); err != nil {
			log.Printf("save user record for %s: %v", identity.Email, err)
		}
	}

	return identity.Email, nil
}

// ListAccounts returns a snapshot of all connected accounts.
func (s *Service) ListAccounts() []models.ConnectedAccount {
	return s.registry.List()
}

// UnlinkAccount removes the account if present; absent emails are a no-op.
func (s *Service) UnlinkAccount(email string) {
	s.registry.Remove(email)
	log.Printf("unlinked account %s", email)
}
