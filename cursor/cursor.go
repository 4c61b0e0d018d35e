// Package cursor implements the opaque pagination tokens handed to clients:
// base64 over a small JSON record. Exactly two shapes exist, modeled as a
// tagged union so a collection cannot be paginated with the wrong strategy.
//
// Decoding tolerates garbage: a malformed or unrecognized token means "no
// cursor" and pagination restarts from the top. Clients feed these tokens
// back from the outside world; they must never be able to error a read.
package cursor

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor is either a Boundary or an Offset. The interface is sealed; callers
// type-switch on the two concrete shapes.
type Cursor interface {
	sealed()
}

// Boundary means "members with score strictly below Timestamp". The right
// shape for append-only feeds: it stays correct when new members land between
// page fetches.
type Boundary struct {
	Timestamp float64 `json:"timestamp"`
}

func (Boundary) sealed() {}

// Offset means "skip Page full pages from the top". Only for collections
// computed once and paged through without further mutation.
type Offset struct {
	Page int `json:"page"`
}

func (Offset) sealed() {}

// Encode renders a cursor as a transport-safe token.
func Encode(c Cursor) string {
	b, err := json.Marshal(c)
	if err != nil {
		// both shapes are plain number records; this cannot happen
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

// Decode parses a token back into its cursor. Corrupt base64, corrupt JSON,
// or an unknown record shape all return (nil, false) - never an error.
func Decode(token string) (Cursor, bool) {
	if token == "" {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, false
	}
	var probe struct {
		Timestamp *float64 `json:"timestamp"`
		Page      *int     `json:"page"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	switch {
	case probe.Timestamp != nil:
		return Boundary{Timestamp: *probe.Timestamp}, true
	case probe.Page != nil:
		p := *probe.Page
		if p < 0 {
			p = 0
		}
		return Offset{Page: p}, true
	default:
		return nil, false
	}
}
