// Package categories resolves raw labels to user-managed categories and
// classifies previously unseen labels for the backfill job.
package categories

import (
	"strings"

	"github.com/ledgerline/ledgerline-backend/pkg/db/models"
)

// Resolver answers case-insensitive, trimmed label lookups against every
// category's name and alias set.
type Resolver struct {
	byLabel map[string]*models.Category
}

// NewResolver indexes categories by normalized name and aliases. On a
// label collision the first category wins.
func NewResolver(categories []models.Category) *Resolver {
	r := &Resolver{byLabel: make(map[string]*models.Category)}
	for i := range categories {
		category := &categories[i]
		r.add(category.Name, category)
		for _, alias := range category.RawLabelAliases {
			r.add(alias, category)
		}
	}
	return r
}

func (r *Resolver) add(label string, category *models.Category) {
	key := normalizeLabel(label)
	if key == "" {
		return
	}
	if _, taken := r.byLabel[key]; !taken {
		r.byLabel[key] = category
	}
}

// Resolve tries the primary label, then the split label. A record whose
// labels map to nothing stays uncategorized; that is never an error.
func (r *Resolver) Resolve(primary, split string) (*models.Category, bool) {
	if category, ok := r.lookup(primary); ok {
		return category, true
	}
	return r.lookup(split)
}

func (r *Resolver) lookup(label string) (*models.Category, bool) {
	category, ok := r.byLabel[normalizeLabel(label)]
	return category, ok
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
