package utils

// FirstNonEmpty returns the first non-empty candidate. It is the one shared
// fallback chain for display values (labels, sources), so every consumer
// degrades the same way.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
