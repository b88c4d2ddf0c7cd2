package domain

// Turn is one prior conversation message supplied by the caller.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// MatchDetails is the per-signal diagnostic breakdown of a lexical match.
type MatchDetails struct {
	ExactPhrase  float64 `json:"exact_phrase"`
	Bigram       float64 `json:"bigram"`
	Term         float64 `json:"term"`
	Synonym      float64 `json:"synonym"`
	TitleOverlap int     `json:"title_overlap"`
}

func (m MatchDetails) Raw() float64 {
	return m.ExactPhrase + m.Bigram + m.Term + m.Synonym
}

// ScoredPassage points into the corpus snapshot it was retrieved from; it
// never outlives that snapshot.
type ScoredPassage struct {
	Document *Document    `json:"document"`
	Score    float64      `json:"score"`
	Match    MatchDetails `json:"match_details,omitempty"`
}

// CategoryWeights holds independent per-category relevance estimates in
// [0,1]. They are not a probability distribution and need not sum to 1.
type CategoryWeights struct {
	Policy  float64 `json:"policy"`
	News    float64 `json:"news"`
	General float64 `json:"general"`
	Other   float64 `json:"other"`
}

// NeutralWeights is the documented fallback when classification fails.
func NeutralWeights() CategoryWeights {
	return CategoryWeights{Policy: 0.5, News: 0.5, General: 0.5, Other: 0.0}
}

// ForCategory selects the weight matching a document category. Anything that
// is neither news nor policy falls back to the general weight.
func (w CategoryWeights) ForCategory(category Category) float64 {
	switch category {
	case CategoryNews:
		return w.News
	case CategoryPolicy:
		return w.Policy
	default:
		return w.General
	}
}

// FollowupJudgment is the parsed reply of the follow-up analyzer.
type FollowupJudgment struct {
	IsFollowup    bool   `json:"is_followup"`
	OriginalTopic string `json:"original_topic"`
}

// SearchResult is what the pipeline hands back to callers: the query it
// actually searched with, the weights it classified, and the ranked passages.
type SearchResult struct {
	Query       string          `json:"query"`
	SearchQuery string          `json:"search_query"`
	Weights     CategoryWeights `json:"weights"`
	Temporal    bool            `json:"temporal"`
	OutOfDomain bool            `json:"out_of_domain"`
	Passages    []ScoredPassage `json:"passages"`
}

// Answer pairs generated text with the passages that grounded it.
type Answer struct {
	Text    string          `json:"text"`
	Sources []ScoredPassage `json:"sources"`
}
