package usecase

import (
	"sort"
	"strings"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

// temporalKeywords flag queries that ask for the most recently dated
// content. Matching is substring-based, so "news" also triggers via "new".
var temporalKeywords = []string{
	"recent", "latest", "current", "new", "newest", "today", "this week", "this month",
}

func isTemporalQuery(query string) bool {
	lowered := strings.ToLower(query)
	for _, keyword := range temporalKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// sortByPublicationDate reorders passages newest first. Documents whose date
// is missing or unparseable carry the zero time and therefore sort last.
func sortByPublicationDate(passages []domain.ScoredPassage) {
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Document.PublicationTime().After(passages[j].Document.PublicationTime())
	})
}
