// Package pagination implements keyset cursors for listings ordered by
// a timestamp column plus id as the tiebreak.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
)

const (
	// DefaultLimit is the page size used when the caller does not set one.
	DefaultLimit = 25
	// MaxLimit caps the rows a single page can request.
	MaxLimit = 100

	cursorSep = "|"
)

// Params carries the limit and opaque cursor from a list request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is a keyset position in a listing. At holds the value of
// whichever timestamp column the listing orders by; ID breaks ties.
type Cursor struct {
	At time.Time
	ID uuid.UUID
}

// NormalizeLimit clamps limit into [1, MaxLimit], substituting
// DefaultLimit for unset values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer is NormalizeLimit plus one extra row, fetched to
// learn whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor renders the cursor as an opaque base64 token.
func EncodeCursor(cursor Cursor) string {
	raw := cursor.At.UTC().Format(time.RFC3339Nano) + cursorSep + cursor.ID.String()
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// ParseCursor decodes a client-supplied cursor token. A blank token
// means the first page and yields a nil cursor. Malformed tokens fail
// with a CodeValidation error.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, invalidCursor(err)
	}
	tsPart, idPart, found := strings.Cut(string(decoded), cursorSep)
	if !found {
		return nil, invalidCursor(fmt.Errorf("missing separator"))
	}
	at, err := time.Parse(time.RFC3339Nano, tsPart)
	if err != nil {
		return nil, invalidCursor(err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, invalidCursor(err)
	}
	return &Cursor{At: at, ID: id}, nil
}

func invalidCursor(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, cause, "invalid pagination cursor")
}
