package analytics

import (
	"net/http"
	"strings"
	"time"

	"github.com/ledgerline/ledgerline-backend/api/validators"
	pkgerrors "github.com/ledgerline/ledgerline-backend/pkg/errors"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

// resolveActivityRange reads the report window from the request. An
// explicit from/to pair of RFC3339 timestamps wins; otherwise the
// window is the trailing ?days= (default 30, max 365) ending at now.
func resolveActivityRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	query := r.URL.Query()
	from := strings.TrimSpace(query.Get("from"))
	to := strings.TrimSpace(query.Get("to"))

	if from != "" || to != "" {
		if from == "" || to == "" {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
		}
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid from timestamp")
		}
		end, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid to timestamp")
		}
		start = start.UTC()
		end = end.UTC()
		if end.Before(start) {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end must be after start")
		}
		return start, end, nil
	}

	days, err := validators.ParseQueryInt(r, "days", 30, 1, 365)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end := now
	start := end.AddDate(0, 0, -days)
	return start, end, nil
}
