package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
)

// ParseQueryInt reads integer query parameter key, falling back to
// defaultVal when absent. Values outside [min, max] are rejected with a
// CodeValidation error naming the field.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseQueryBool reads boolean query parameter key, falling back to
// defaultVal when absent. Accepts the forms strconv.ParseBool accepts.
func ParseQueryBool(r *http.Request, key string, defaultVal bool) (bool, error) {
	raw, ok := queryValue(r, key)
	if !ok {
		return defaultVal, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a boolean").
			WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// queryValue returns the trimmed query parameter and whether it was
// set to something non-blank.
func queryValue(r *http.Request, key string) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	return raw, raw != ""
}
