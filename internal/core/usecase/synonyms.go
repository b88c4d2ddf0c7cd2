package usecase

import (
	"sort"
	"strings"
)

// Thesaurus is a static domain synonym table built once at startup and
// shared by reference. Lookups are bidirectional: every member of a group
// surfaces the whole group.
type Thesaurus struct {
	groups     [][]string
	membership map[string][]int
}

func NewThesaurus(table map[string][]string) *Thesaurus {
	t := &Thesaurus{
		membership: make(map[string][]int, len(table)*4),
	}

	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := make([]string, 0, len(table[key])+1)
		group = appendTerm(group, key)
		for _, synonym := range table[key] {
			group = appendTerm(group, synonym)
		}
		if len(group) < 2 {
			continue
		}
		groupID := len(t.groups)
		t.groups = append(t.groups, group)
		for _, term := range group {
			t.membership[term] = append(t.membership[term], groupID)
		}
	}
	return t
}

func appendTerm(group []string, raw string) []string {
	term := strings.ToLower(strings.TrimSpace(raw))
	if term == "" {
		return group
	}
	for _, existing := range group {
		if existing == term {
			return group
		}
	}
	return append(group, term)
}

// Expand returns the union of the input terms and every term reachable by
// one hop through the synonym table, preserving input order first and group
// order after. The originals are always included.
func (t *Thesaurus) Expand(terms []string) []string {
	out := make([]string, 0, len(terms)*2)
	seen := make(map[string]struct{}, len(terms)*2)

	add := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	for _, term := range terms {
		add(strings.ToLower(term))
	}
	for _, term := range terms {
		for _, groupID := range t.membership[strings.ToLower(term)] {
			for _, related := range t.groups[groupID] {
				add(related)
			}
		}
	}
	return out
}

// DefaultSynonyms is the built-in agricultural-domain table used when no
// synonyms file is configured.
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"ethanol":        {"biofuel", "e15", "e85", "renewable fuel"},
		"corn":           {"maize", "grain"},
		"farmer":         {"grower", "producer"},
		"farming":        {"agriculture", "cultivation"},
		"trade":          {"export", "exports", "tariff", "tariffs"},
		"policy":         {"position", "stance", "priorities"},
		"legislation":    {"bill", "law", "act"},
		"sustainability": {"conservation", "stewardship", "environment"},
		"price":          {"prices", "market", "markets"},
		"news":           {"article", "articles", "announcement"},
		"fertilizer":     {"nitrogen", "nutrient", "nutrients"},
		"yield":          {"harvest", "production", "bushels"},
	}
}
