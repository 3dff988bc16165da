// Package mockgoogle holds the in-memory state behind cmd/mock-google: a
// canned Google account with a generated inbox, served in the wire shapes
// the oauth2 and Gmail clients expect. Development aid only.
package mockgoogle

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	senders = []string{
		"Jane Smith <jane.smith@example.com>",
		"Billing <billing@company.com>",
		"Newsletter <news@business.org>",
		"Bob Johnson <bob.johnson@enterprise.net>",
	}
	subjects = []string{
		"Meeting tomorrow",
		"Project update",
		"Budget review",
		"Team lunch",
		"Quarterly report",
		"Client feedback",
		"Urgent: Action required",
		"Follow up",
	}
	dates = []string{
		"Mon, 3 Jun 2024 10:15:00 -0700",
		"Tue, 4 Jun 2024 08:30:00 -0700",
		"Wed, 5 Jun 2024 17:45:00 -0700",
	}

	account = Userinfo{
		ID:    "108234567890123456789",
		Email: "demo.user@example.com",
		Name:  "Demo User",
	}

	// Issued access tokens - maintained across calls
	tokens     = make(map[string]bool)
	tokenMutex sync.RWMutex

	// Generated inbox, newest first
	inbox []Message
)

// TokenResponse is the OAuth2 token endpoint's JSON body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Userinfo mirrors the oauth2/v2 userinfo resource.
type Userinfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Header, Body, Payload and Message mirror the Gmail API message resource.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Body struct {
	Data string `json:"data,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type Payload struct {
	MimeType string    `json:"mimeType,omitempty"`
	Headers  []Header  `json:"headers,omitempty"`
	Body     *Body     `json:"body,omitempty"`
	Parts    []Payload `json:"parts,omitempty"`
}

type Message struct {
	ID      string   `json:"id"`
	Snippet string   `json:"snippet"`
	Payload *Payload `json:"payload,omitempty"`
}

type MessageRef struct {
	ID string `json:"id"`
}

type MessageList struct {
	Messages           []MessageRef `json:"messages"`
	ResultSizeEstimate int64        `json:"resultSizeEstimate"`
}

func init() {
	inbox = make([]Message, 0, 24)
	for i := 0; i < 24; i++ {
		inbox = append(inbox, generateMessage(i))
	}
}

func b64url(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func generateMessage(index int) Message {
	subject := subjects[index%len(subjects)]
	from := senders[index%len(senders)]
	date := dates[index%len(dates)]
	plain := fmt.Sprintf("Hello,\n\nthis is message %d about %q.\n", index, subject)
	html := fmt.Sprintf("<p>Hello,</p><p>this is message <b>%d</b> about %q.</p>", index, subject)

	headers := []Header{
		{Name: "From", Value: from},
		{Name: "Date", Value: date},
	}
	// Every sixth message has no Subject header so the sentinel path is
	// exercised end to end.
	if index%6 != 5 {
		headers = append([]Header{{Name: "Subject", Value: subject}}, headers...)
	}

	msg := Message{
		ID:      fmt.Sprintf("msg-%04d", index),
		Snippet: fmt.Sprintf("this is message %d about %q", index, subject),
	}

	// Every fourth message is a single-part payload with a direct body;
	// the rest are multipart/alternative.
	if index%4 == 3 {
		msg.Payload = &Payload{
			MimeType: "text/plain",
			Headers:  headers,
			Body:     &Body{Data: b64url(plain), Size: int64(len(plain))},
		}
		return msg
	}
	msg.Payload = &Payload{
		MimeType: "multipart/alternative",
		Headers:  headers,
		Parts: []Payload{
			{MimeType: "text/plain", Body: &Body{Data: b64url(plain), Size: int64(len(plain))}},
			{MimeType: "text/html", Body: &Body{Data: b64url(html), Size: int64(len(html))}},
		},
	}
	return msg
}

// ExchangeCode trades an authorization code for tokens. Any non-empty code
// except the literal "expired" is accepted.
func ExchangeCode(code string) (TokenResponse, error) {
	if code == "" {
		return TokenResponse{}, fmt.Errorf("invalid_request: missing code")
	}
	if code == "expired" {
		return TokenResponse{}, fmt.Errorf("invalid_grant: code expired")
	}

	tok := uuid.NewString()
	tokenMutex.Lock()
	tokens[tok] = true
	tokenMutex.Unlock()

	return TokenResponse{
		AccessToken:  tok,
		RefreshToken: uuid.NewString(),
		TokenType:    "Bearer",
		ExpiresIn:    3600,
	}, nil
}

// ValidToken reports whether the access token was issued by ExchangeCode.
func ValidToken(tok string) bool {
	tokenMutex.RLock()
	defer tokenMutex.RUnlock()
	return tokens[tok]
}

// GetUserinfo returns the canned account identity.
func GetUserinfo() Userinfo {
	return account
}

// ListMessages returns up to max message refs, newest first.
func ListMessages(max int64) MessageList {
	n := int64(len(inbox))
	if max > 0 && max < n {
		n = max
	}
	refs := make([]MessageRef, 0, n)
	for i := int64(0); i < n; i++ {
		refs = append(refs, MessageRef{ID: inbox[i].ID})
	}
	return MessageList{Messages: refs, ResultSizeEstimate: int64(len(inbox))}
}

// GetMessage returns the full message by id.
func GetMessage(id string) (Message, bool) {
	for _, m := range inbox {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}
