// Package instance identifies the running worker process.
package instance

import "github.com/ledgerline/ledgerline-backend/pkg/env"

// GetID returns this process's worker identity from WORKER_ID,
// defaulting to worker-0 for single-instance runs.
func GetID() string {
	return env.Get("WORKER_ID", "worker-0")
}
