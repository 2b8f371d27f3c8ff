package models

import "strings"

// ParseKeywords splits a comma-delimited keyword field into lowercase tokens.
// Whitespace around each token is trimmed, empty tokens are dropped and
// duplicates keep their first position.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	tokens := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}
