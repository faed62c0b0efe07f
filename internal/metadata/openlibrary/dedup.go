package openlibrary

import (
	"crypto/md5" //#nosec G501 -- fingerprinting only, not security
	"encoding/hex"
	"strings"
)

// MaxResults caps how many deduplicated search results we return.
const MaxResults = 20

// Signature fingerprints a search result by normalized title and
// primary author, so reprints of the same work collapse into one entry.
func Signature(title string, authors []string) string {
	author := "Unknown"
	if len(authors) > 0 {
		author = authors[0]
	}

	normalized := strings.ToLower(strings.TrimSpace(title)) + "|" + strings.ToLower(strings.TrimSpace(author))
	sum := md5.Sum([]byte(normalized)) //#nosec G401 -- fingerprinting only
	return hex.EncodeToString(sum[:])
}

// Deduplicate drops results whose signature has already been seen,
// keeping the first occurrence, then truncates to MaxResults. Search
// results arrive sorted by edition count so the kept entry is the most
// widely printed one.
func Deduplicate(results []SearchResult) []SearchResult {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]SearchResult, 0, len(results))

	for _, r := range results {
		sig := Signature(r.Title, r.Authors)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		deduped = append(deduped, r)
	}

	if len(deduped) > MaxResults {
		deduped = deduped[:MaxResults]
	}
	return deduped
}
