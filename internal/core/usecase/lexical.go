package usecase

import (
	"strings"
	"unicode"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

// stopWords is the fixed set of English function words excluded from term
// and bigram matching: articles, auxiliaries, pronouns, prepositions, and
// common conjunctions.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "shall": {}, "should": {},
	"may": {}, "might": {}, "must": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"me": {}, "him": {}, "her": {}, "us": {}, "them": {},
	"my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "about": {}, "as": {}, "into": {}, "through": {},
	"after": {}, "over": {}, "between": {}, "under": {},
	"and": {}, "or": {}, "but": {}, "not": {}, "no": {},
	"what": {}, "which": {}, "who": {}, "whom": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

func isStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// queryTerms is the normalized, filtered, and synonym-expanded view of a
// search query that every lexical signal is computed from.
type queryTerms struct {
	normalized string   // whole query, lower-cased and trimmed
	terms      []string // stop-word-filtered terms longer than 2 runes
	bigrams    []string // adjacent filtered term pairs, space-joined
	expanded   []string // synonym-only terms, originals excluded
	all        []string // terms plus expanded, distinct, original order
}

func prepareQuery(thesaurus *Thesaurus, query string) queryTerms {
	normalized := strings.ToLower(strings.TrimSpace(query))
	terms := filterTerms(splitAlphaNumLower(normalized))

	bigrams := make([]string, 0, len(terms))
	for i := 0; i+1 < len(terms); i++ {
		bigrams = append(bigrams, terms[i]+" "+terms[i+1])
	}

	all := thesaurus.Expand(terms)
	original := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		original[term] = struct{}{}
	}
	expanded := make([]string, 0, len(all))
	for _, term := range all {
		if _, ok := original[term]; !ok {
			expanded = append(expanded, term)
		}
	}

	return queryTerms{
		normalized: normalized,
		terms:      terms,
		bigrams:    bigrams,
		expanded:   expanded,
		all:        all,
	}
}

// filterTerms drops stop words and terms of two runes or fewer; those are
// too noisy to carry signal.
func filterTerms(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len([]rune(token)) <= 2 {
			continue
		}
		if isStopWord(token) {
			continue
		}
		out = append(out, token)
	}
	return out
}

// indexedDocument caches the lower-cased title and body so signal counting
// never re-normalizes corpus text per query.
type indexedDocument struct {
	doc   *domain.Document
	title string
	body  string
}

// corpusIndex is one immutable corpus snapshot. Reload replaces the whole
// index atomically; nothing mutates it after construction.
type corpusIndex struct {
	docs    []domain.Document
	indexed []indexedDocument
}

func buildCorpusIndex(docs []domain.Document) *corpusIndex {
	index := &corpusIndex{
		docs:    docs,
		indexed: make([]indexedDocument, len(docs)),
	}
	for i := range index.docs {
		doc := &index.docs[i]
		index.indexed[i] = indexedDocument{
			doc:   doc,
			title: strings.ToLower(doc.Title),
			body:  strings.ToLower(doc.Body),
		}
	}
	return index
}

func (ci *corpusIndex) size() int {
	if ci == nil {
		return 0
	}
	return len(ci.docs)
}

// matchSignals computes the independent lexical signal contributions for one
// document. A title hit always outweighs the equivalent body hit.
func matchSignals(doc indexedDocument, q queryTerms) domain.MatchDetails {
	var m domain.MatchDetails

	if q.normalized != "" {
		switch {
		case strings.Contains(doc.title, q.normalized):
			m.ExactPhrase = exactPhraseScore * titleMatchFactor
		case strings.Contains(doc.body, q.normalized):
			m.ExactPhrase = exactPhraseScore
		}
	}

	for _, bigram := range q.bigrams {
		m.Bigram += float64(strings.Count(doc.body, bigram)) * bigramBodyScore
		m.Bigram += float64(strings.Count(doc.title, bigram)) * bigramTitleScore
	}

	for _, term := range q.terms {
		switch {
		case strings.Contains(doc.title, term):
			m.Term += termTitleScore
		case strings.Contains(doc.body, term):
			m.Term += termBodyScore
		}
	}

	for _, term := range q.expanded {
		switch {
		case strings.Contains(doc.title, term):
			m.Synonym += termTitleScore * synonymDiscount
		case strings.Contains(doc.body, term):
			m.Synonym += termBodyScore * synonymDiscount
		}
	}

	for _, term := range q.all {
		if strings.Contains(doc.title, term) {
			m.TitleOverlap++
		}
	}

	return m
}

func splitAlphaNumLower(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
