package gcs

import (
	"fmt"
	"path"
	"strings"
)

const scheme = "gs://"

// URI builds gs://bucket/object.
func URI(bucket, object string) string {
	return scheme + bucket + "/" + object
}

// ParseURI splits gs://bucket/path/to/object into its bucket and object.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// ExtractFilename returns the last path element of a GCS URI.
// e.g., "gs://bucket/reports/expense-report-2024-05-01.html" → "expense-report-2024-05-01.html"
func ExtractFilename(uri string) string {
	trimmed := strings.TrimPrefix(uri, scheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
