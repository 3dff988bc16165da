package models

// RawHeader is one name/value pair from a remote message's header list.
type RawHeader struct {
	Name  string
	Value string
}

// RawPart is one body part of a remote message. Data is the part's payload as
// returned by the provider (base64url encoded).
type RawPart struct {
	MimeType string
	Data     string
}

// RawMessage is the provider-independent wire shape of one remote message:
// a header list, an optional direct body payload, and an optional flat
// sequence of body parts in the order the provider returned them.
type RawMessage struct {
	ID      string
	Snippet string
	Headers []RawHeader
	Body    string // base64url encoded, empty when absent
	Parts   []RawPart
}

// NormalizedMessage is the canonical, decoded representation of one remote
// message. Immutable once constructed.
type NormalizedMessage struct {
	Subject   string `json:"subject"`
	From      string `json:"from"`
	Date      string `json:"date"`
	Snippet   string `json:"snippet"`
	TextPlain string `json:"textPlain"`
	TextHTML  string `json:"textHtml"`
}

// NoSubject is the sentinel used when a message carries no Subject header.
const NoSubject = "(No Subject)"
