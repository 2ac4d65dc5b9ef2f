package db

import (
	"encoding/base64"
	"encoding/json"

	"jobworkflow/internal/toolerr"
)

// Cursor marks a keyset-pagination position. Callers treat the encoded
// form as opaque.
type Cursor struct {
	CapturedAt string `json:"captured_at"`
	ID         int64  `json:"id"`
}

// Encode renders the cursor as an opaque base64 token.
func (c Cursor) Encode() string {
	raw, _ := json.Marshal(c)
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor token. Empty and malformed
// tokens are validation failures; callers pass nil for "no cursor"
// instead of an empty string.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, toolerr.Validation("cursor must be a non-empty string")
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, toolerr.Validation("invalid cursor: not base64")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, toolerr.Validation("invalid cursor: malformed payload")
	}
	if c.ID <= 0 {
		return nil, toolerr.Validation("invalid cursor: missing id")
	}
	return &c, nil
}
