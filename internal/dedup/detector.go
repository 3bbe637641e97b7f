package dedup

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline-backend/pkg/types"
)

// Stored is the fingerprint pair of one persisted transaction.
type Stored struct {
	TransactionID uuid.UUID
	Keys          Keys
}

// StoredFrom fingerprints a persisted transaction's fields.
func StoredFrom(id uuid.UUID, date types.Date, amount decimal.Decimal, description, accountLabel string) Stored {
	return Stored{TransactionID: id, Keys: KeysFor(date, amount, description, accountLabel)}
}

// Outcome of checking one incoming record.
type Outcome struct {
	// Duplicate is set on an exact-fingerprint hit; the record should be
	// skipped and counted, never inserted.
	Duplicate   bool
	DuplicateOf uuid.UUID

	// PotentialOf lists stored transactions hit only by the partial
	// fingerprint; the record is imported and flagged for review.
	PotentialOf []uuid.UUID
}

// Detector answers duplicate checks against the fingerprint set captured
// once at import start. Imports for the same scope must be serialized
// externally, since the set is not refreshed mid-run.
type Detector struct {
	exact   map[string]uuid.UUID
	partial map[string][]uuid.UUID
}

func NewDetector(stored []Stored) *Detector {
	d := &Detector{
		exact:   make(map[string]uuid.UUID, len(stored)),
		partial: make(map[string][]uuid.UUID, len(stored)),
	}
	for _, s := range stored {
		if _, seen := d.exact[s.Keys.Exact]; !seen {
			d.exact[s.Keys.Exact] = s.TransactionID
		}
		d.partial[s.Keys.Partial] = append(d.partial[s.Keys.Partial], s.TransactionID)
	}
	return d
}

// Check classifies one incoming record's fingerprints.
func (d *Detector) Check(k Keys) Outcome {
	if id, ok := d.exact[k.Exact]; ok {
		return Outcome{Duplicate: true, DuplicateOf: id}
	}
	if ids := d.partial[k.Partial]; len(ids) > 0 {
		return Outcome{PotentialOf: append([]uuid.UUID(nil), ids...)}
	}
	return Outcome{}
}
