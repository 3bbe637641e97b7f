// Package env reads process environment values with fallbacks.
package env

import "os"

// Get reads the named environment variable, substituting fallback when
// it is unset or blank.
func Get(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
