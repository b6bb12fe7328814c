package env

import "os"

// Get reads an environment variable, falling back when it is unset or empty.
// Deploy scripts sometimes export empty strings, so empty counts as unset.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
