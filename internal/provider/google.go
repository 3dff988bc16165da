package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/talkport/mailfeed/internal/models"
)

const gmailUser = "me"

// GoogleProvider implements the OAuth and Mail interfaces against Google's
// OAuth2 and Gmail APIs.
type GoogleProvider struct {
	oauth *oauth2.Config

	// apiEndpoint overrides the Google API base URL. Empty in production;
	// set in development to point at the mock-google server.
	apiEndpoint string

	// Cached Gmail service for the credentials of the linking operation in
	// flight, so a fetch window does not rebuild the client per message.
	mu     sync.Mutex
	svcTok string
	svc    *gmailv1.Service
}

// NewGoogleProvider builds a provider from client credentials and the
// redirect URL resolved once at startup. apiEndpoint may be empty.
func NewGoogleProvider(clientID, clientSecret, redirectURL, apiEndpoint string) *GoogleProvider {
	endpoint := google.Endpoint
	if apiEndpoint != "" {
		base := strings.TrimRight(apiEndpoint, "/")
		endpoint = oauth2.Endpoint{
			AuthURL:  base + "/o/oauth2/auth",
			TokenURL: base + "/token",
		}
	}
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauth2v2.UserinfoEmailScope,
				oauth2v2.UserinfoProfileScope,
				gmailv1.GmailReadonlyScope,
			},
			Endpoint: endpoint,
		},
		apiEndpoint: apiEndpoint,
	}
}

// AuthCodeURL returns the consent-screen URL the HTTP layer redirects to.
// Offline access and a forced consent prompt so Google reissues a refresh
// token on every link.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange implements OAuth.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Credentials, Identity, error) {
	if strings.TrimSpace(code) == "" {
		return Credentials{}, Identity{}, ErrInvalidCode
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Credentials{}, Identity{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	creds := Credentials{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}

	svc, err := oauth2v2.NewService(ctx, g.clientOptions(ctx, creds)...)
	if err != nil {
		return Credentials{}, Identity{}, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Credentials{}, Identity{}, fmt.Errorf("%w: %v", ErrIdentityResolution, err)
	}

	return creds, Identity{Email: info.Email, Name: info.Name, GoogleID: info.Id}, nil
}

// ListMessageIDs implements Mail.
func (g *GoogleProvider) ListMessageIDs(ctx context.Context, creds Credentials, max int64) ([]string, error) {
	svc, err := g.gmailService(ctx, creds)
	if err != nil {
		return nil, err
	}
	res, err := svc.Users.Messages.List(gmailUser).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	ids := make([]string, 0, len(res.Messages))
	for _, m := range res.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// GetMessage implements Mail.
func (g *GoogleProvider) GetMessage(ctx context.Context, creds Credentials, id string) (*models.RawMessage, error) {
	svc, err := g.gmailService(ctx, creds)
	if err != nil {
		return nil, err
	}
	msg, err := svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return rawFromGmail(msg), nil
}

func (g *GoogleProvider) gmailService(ctx context.Context, creds Credentials) (*gmailv1.Service, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.svc != nil && g.svcTok == creds.AccessToken {
		return g.svc, nil
	}
	svc, err := gmailv1.NewService(ctx, g.clientOptions(ctx, creds)...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	g.svc, g.svcTok = svc, creds.AccessToken
	return svc, nil
}

func (g *GoogleProvider) clientOptions(ctx context.Context, creds Credentials) []option.ClientOption {
	tok := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}
	opts := []option.ClientOption{
		option.WithTokenSource(g.oauth.TokenSource(ctx, tok)),
	}
	if g.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(g.apiEndpoint))
	}
	return opts
}

// rawFromGmail converts a Gmail API message into the provider-independent
// raw shape the normalizer consumes. The MIME part tree is flattened
// depth-first, preserving the order the API returned.
func rawFromGmail(msg *gmailv1.Message) *models.RawMessage {
	raw := &models.RawMessage{ID: msg.Id, Snippet: msg.Snippet}
	if msg.Payload == nil {
		return raw
	}
	for _, h := range msg.Payload.Headers {
		raw.Headers = append(raw.Headers, models.RawHeader{Name: h.Name, Value: h.Value})
	}
	if msg.Payload.Body != nil {
		raw.Body = msg.Payload.Body.Data
	}
	raw.Parts = flattenParts(msg.Payload.Parts, nil)
	return raw
}

func flattenParts(parts []*gmailv1.MessagePart, out []models.RawPart) []models.RawPart {
	for _, p := range parts {
		if p == nil {
			continue
		}
		var data string
		if p.Body != nil {
			data = p.Body.Data
		}
		out = append(out, models.RawPart{MimeType: p.MimeType, Data: data})
		if len(p.Parts) > 0 {
			out = flattenParts(p.Parts, out)
		}
	}
	return out
}
