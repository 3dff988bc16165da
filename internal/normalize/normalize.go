// Package normalize turns raw remote message representations into their
// canonical decoded form. Pure functions, no I/O.
package normalize

import (
	"encoding/base64"

	"github.com/talkport/mailfeed/internal/models"
)

// Message normalizes one raw message.
//
// Headers: case-sensitive exact match on Subject/From/Date, first occurrence
// wins. A missing Subject yields the "(No Subject)" sentinel; missing
// From/Date yield empty strings.
//
// Body: with parts present, the parts are scanned in provider order and the
// last text/plain and last text/html parts win, each decoded independently.
// With no parts but a direct payload, the payload decodes into TextPlain
// only. A part that fails to decode degrades that field to empty; it never
// fails the message.
func Message(raw *models.RawMessage) models.NormalizedMessage {
	msg := models.NormalizedMessage{
		Subject: models.NoSubject,
		Snippet: raw.Snippet,
	}

	var haveSubject, haveFrom, haveDate bool
	for _, h := range raw.Headers {
		switch h.Name {
		case "Subject":
			if !haveSubject {
				msg.Subject = h.Value
				haveSubject = true
			}
		case "From":
			if !haveFrom {
				msg.From = h.Value
				haveFrom = true
			}
		case "Date":
			if !haveDate {
				msg.Date = h.Value
				haveDate = true
			}
		}
	}

	switch {
	case len(raw.Parts) > 0:
		for _, p := range raw.Parts {
			switch p.MimeType {
			case "text/plain":
				msg.TextPlain = decodeBody(p.Data)
			case "text/html":
				msg.TextHTML = decodeBody(p.Data)
			}
		}
	case raw.Body != "":
		msg.TextPlain = decodeBody(raw.Body)
	}

	return msg
}

// decodeBody decodes a base64url payload to UTF-8 text. Gmail emits both
// padded and unpadded encodings, so try both before giving up.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(b)
}
