package importer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ledgerline/ledgerline-backend/internal/dedup"
	"github.com/ledgerline/ledgerline-backend/internal/resolve"
	"github.com/ledgerline/ledgerline-backend/pkg/enums"
)

// RulesFile is the operator-editable import tuning file. Entries merge
// over the compiled defaults; matching is case- and whitespace-insensitive.
type RulesFile struct {
	TypeHints     map[string]string `yaml:"type_hints"`
	IgnoredLabels []string          `yaml:"ignored_labels"`
}

// Rules is the compiled form consumed by the pipeline.
type Rules struct {
	typeRules resolve.TypeRules
	ignored   map[string]struct{}
}

func defaultRulesFile() RulesFile {
	return RulesFile{
		TypeHints: map[string]string{
			"deposit":          "income",
			"interest":         "income",
			"payroll":          "income",
			"refund":           "income",
			"check":            "expense",
			"debit":            "expense",
			"withdrawal":       "expense",
			"fee":              "expense",
			"service charge":   "expense",
			"pos":              "expense",
			"bill pmt -online": "expense",
		},
		IgnoredLabels: []string{
			"Opening Balance Equity",
		},
	}
}

// LoadRules reads the rules file at path and merges it over the defaults.
// An empty path yields the defaults alone.
func LoadRules(path string) (*Rules, error) {
	file := defaultRulesFile()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read import rules: %w", err)
		}
		var loaded RulesFile
		if err := yaml.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse import rules: %w", err)
		}
		for hint, target := range loaded.TypeHints {
			file.TypeHints[hint] = target
		}
		file.IgnoredLabels = append(file.IgnoredLabels, loaded.IgnoredLabels...)
	}

	return compileRules(file)
}

func compileRules(file RulesFile) (*Rules, error) {
	hints := make(map[string]enums.TransactionType, len(file.TypeHints))
	for hint, target := range file.TypeHints {
		parsed, err := enums.ParseTransactionType(target)
		if err != nil {
			return nil, fmt.Errorf("type hint %q: %w", hint, err)
		}
		if parsed == enums.TransactionTypeTransfer {
			return nil, fmt.Errorf("type hint %q: transfers come from account links, not hints", hint)
		}
		hints[hint] = parsed
	}

	ignored := make(map[string]struct{}, len(file.IgnoredLabels))
	for _, label := range file.IgnoredLabels {
		normalized := dedup.NormalizeLabel(label)
		if normalized == "" {
			continue
		}
		ignored[normalized] = struct{}{}
	}

	return &Rules{typeRules: resolve.NewTypeRules(hints), ignored: ignored}, nil
}

// TypeRules exposes the compiled hint table for leg resolution.
func (r *Rules) TypeRules() resolve.TypeRules {
	return r.typeRules
}

// IsIgnored reports whether records touching the label are excluded
// from import.
func (r *Rules) IsIgnored(label string) bool {
	if label == "" {
		return false
	}
	_, ok := r.ignored[dedup.NormalizeLabel(label)]
	return ok
}
