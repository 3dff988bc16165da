package ingest

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/talkport/mailfeed/internal/models"
	"github.com/talkport/mailfeed/internal/provider"
	"github.com/talkport/mailfeed/internal/registry"
	"github.com/talkport/mailfeed/internal/store"
)

type fakeOAuth struct {
	identity provider.Identity
	err      error
}

func (f *fakeOAuth) Exchange(ctx context.Context, code string) (provider.Credentials, provider.Identity, error) {
	if f.err != nil {
		return provider.Credentials{}, provider.Identity{}, f.err
	}
	return provider.Credentials{AccessToken: "at-" + code}, f.identity, nil
}

type recordingStore struct {
	saved []models.UserRecord
	err   error
}

func (r *recordingStore) SaveUser(ctx context.Context, u models.UserRecord) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, u)
	return nil
}

func (r *recordingStore) ListUsers(ctx context.Context) ([]models.UserRecord, error) { return nil, nil }
func (r *recordingStore) DeleteUser(ctx context.Context, email string) error         { return nil }

// scenarioMail serves the concrete two-message scenario: m1 has full headers
// and a plain body, m2 has nothing beyond its id.
type scenarioMail struct{}

func (scenarioMail) ListMessageIDs(ctx context.Context, creds provider.Credentials, max int64) ([]string, error) {
	return []string{"m1", "m2"}, nil
}

func (scenarioMail) GetMessage(ctx context.Context, creds provider.Credentials, id string) (*models.RawMessage, error) {
	if id == "m1" {
		return &models.RawMessage{
			ID:      "m1",
			Snippet: "hello",
			Headers: []models.RawHeader{
				{Name: "Subject", Value: "Hi"},
				{Name: "From", Value: "a@x.com"},
			},
			Parts: []models.RawPart{
				{MimeType: "text/plain", Data: base64.RawURLEncoding.EncodeToString([]byte("hello"))},
			},
		}, nil
	}
	return &models.RawMessage{ID: id}, nil
}

func newTestService(oauth provider.OAuth, mail provider.Mail, users store.UserStore) (*Service, *registry.Registry) {
	reg := registry.New()
	return NewService(oauth, NewFetcher(mail, 0, 2), reg, users), reg
}

func TestLinkAccount_ConcreteScenario(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com", Name: "U", GoogleID: "g1"}}
	svc, _ := newTestService(oauth, scenarioMail{}, nil)

	email, err := svc.LinkAccount(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	if email != "u@example.com" {
		t.Fatalf("email = %q; want u@example.com", email)
	}

	accounts := svc.ListAccounts()
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d; want 1", len(accounts))
	}
	got := accounts[0]
	if got.Email != "u@example.com" || len(got.Messages) != 2 {
		t.Fatalf("account = %+v; want 2 messages for u@example.com", got)
	}

	m1 := got.Messages[0]
	want1 := models.NormalizedMessage{
		Subject: "Hi", From: "a@x.com", Date: "",
		Snippet: "hello", TextPlain: "hello", TextHTML: "",
	}
	if m1 != want1 {
		t.Errorf("m1 = %+v; want %+v", m1, want1)
	}

	m2 := got.Messages[1]
	if m2.Subject != models.NoSubject {
		t.Errorf("m2.Subject = %q; want %q", m2.Subject, models.NoSubject)
	}
	if m2.From != "" || m2.Date != "" || m2.TextPlain != "" || m2.TextHTML != "" {
		t.Errorf("m2 = %+v; want empty fields", m2)
	}
}

func TestLinkAccount_RelinkReplacesMessages(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com"}}
	mail := &fakeMail{ids: []string{"a", "b", "c"}}
	svc, _ := newTestService(oauth, mail, nil)

	if _, err := svc.LinkAccount(context.Background(), "ABC"); err != nil {
		t.Fatalf("first link: %v", err)
	}
	mail.ids = []string{"d"}
	if _, err := svc.LinkAccount(context.Background(), "DEF"); err != nil {
		t.Fatalf("second link: %v", err)
	}

	accounts := svc.ListAccounts()
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d; want 1 after relink", len(accounts))
	}
	if len(accounts[0].Messages) != 1 || accounts[0].Messages[0].Subject != "msg-d" {
		t.Errorf("messages = %v; want only the second fetch", accounts[0].Messages)
	}
}

func TestLinkAccount_FetchFailureLeavesRegistryUntouched(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com"}}
	mail := &fakeMail{ids: []string{"m1", "m2", "m3"}, failID: "m2"}
	svc, reg := newTestService(oauth, mail, nil)

	_, err := svc.LinkAccount(context.Background(), "ABC")
	if !errors.Is(err, provider.ErrMessageFetch) {
		t.Fatalf("err = %v; want ErrMessageFetch", err)
	}
	if reg.Len() != 0 {
		t.Errorf("registry has %d accounts after failed link; want 0", reg.Len())
	}
}

func TestLinkAccount_ExchangeErrorsPropagateUnchanged(t *testing.T) {
	for _, sentinel := range []error{
		provider.ErrInvalidCode,
		provider.ErrExchangeFailed,
		provider.ErrIdentityResolution,
	} {
		oauth := &fakeOAuth{err: sentinel}
		svc, reg := newTestService(oauth, &fakeMail{}, nil)

		_, err := svc.LinkAccount(context.Background(), "")
		if !errors.Is(err, sentinel) {
			t.Errorf("err = %v; want %v", err, sentinel)
		}
		if reg.Len() != 0 {
			t.Errorf("registry mutated on %v", sentinel)
		}
	}
}

func TestLinkAccount_SavesUserRecord(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com", Name: "User", GoogleID: "g1"}}
	users := &recordingStore{}
	svc, _ := newTestService(oauth, &fakeMail{ids: []string{"a"}}, users)

	if _, err := svc.LinkAccount(context.Background(), "ABC"); err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	if len(users.saved) != 1 {
		t.Fatalf("saved = %d records; want 1", len(users.saved))
	}
	rec := users.saved[0]
	if rec.Email != "u@example.com" || rec.Name != "User" || rec.GoogleID != "g1" {
		t.Errorf("record = %+v", rec)
	}
	if rec.LinkedAt.IsZero() {
		t.Errorf("LinkedAt is zero")
	}
}

func TestLinkAccount_StoreFailureDoesNotFailLink(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com"}}
	users := &recordingStore{err: errors.New("db down")}
	svc, reg := newTestService(oauth, &fakeMail{ids: []string{"a"}}, users)

	email, err := svc.LinkAccount(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	if email != "u@example.com" || reg.Len() != 1 {
		t.Errorf("link did not complete despite store failure")
	}
}

func TestUnlinkAccount_Idempotent(t *testing.T) {
	oauth := &fakeOAuth{identity: provider.Identity{Email: "u@example.com"}}
	svc, reg := newTestService(oauth, &fakeMail{ids: []string{"a"}}, nil)

	if _, err := svc.LinkAccount(context.Background(), "ABC"); err != nil {
		t.Fatalf("LinkAccount: %v", err)
	}
	svc.UnlinkAccount("u@example.com")
	svc.UnlinkAccount("u@example.com") // second removal is a no-op
	svc.UnlinkAccount("never-linked@example.com")

	if reg.Len() != 0 {
		t.Errorf("registry has %d accounts; want 0", reg.Len())
	}
}
