// Package dedup computes record fingerprints and checks incoming records
// against the fingerprint set captured at import start. The detector is
// pure and read-only: skipping exact repeats and flagging potential
// duplicates are the caller's job, and confirmed-duplicate deletion is a
// separate explicit operation.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// descSuffixTokens are trailing description tokens dropped before
// hashing, so "Amazon" and "AMAZON.COM" produce the same fingerprint.
var descSuffixTokens = map[string]struct{}{
	"com": {},
	"net": {},
	"org": {},
	"inc": {},
	"llc": {},
}

// NormalizeLabel lowercases and trims an account label.
func NormalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeDescription lowercases a description, drops trailing
// domain/corporate suffix tokens, and strips every character that is not
// a letter or digit. Punctuation-only edits between two exports of the
// same charge do not change the result.
func NormalizeDescription(raw string) string {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for len(tokens) > 1 {
		if _, ok := descSuffixTokens[tokens[len(tokens)-1]]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, "")
}

// Keys carries both fingerprints for one record.
type Keys struct {
	Exact   string
	Partial string
}

// KeysFor derives the exact and partial fingerprints. The exact key
// covers date, unsigned amount, description, and account label; the
// partial key excludes the description so reworded repeats of the same
// charge still collide.
func KeysFor(date types.Date, amount decimal.Decimal, description, accountLabel string) Keys {
	magnitude := amount.Abs().StringFixed(2)
	label := NormalizeLabel(accountLabel)
	return Keys{
		Exact:   hashParts(date.String(), magnitude, NormalizeDescription(description), label),
		Partial: hashParts(date.String(), magnitude, label),
	}
}

func hashParts(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
