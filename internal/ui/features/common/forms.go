package common

import (
	"net/http"
	"strconv"
	"strings"
)

// Field returns the trimmed form value for key.
func Field(r *http.Request, key string) string {
	return strings.TrimSpace(r.PostFormValue(key))
}

// Port parses a port field, returning fallback when it is not a number
// or is zero.
func Port(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n == 0 {
		return fallback
	}
	return n
}

// LocalPath returns next when it is a local path under prefix, otherwise
// fallback. It keeps form redirects on-site.
func LocalPath(next, prefix, fallback string) string {
	if !strings.HasPrefix(next, prefix) || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}
