package usecase

import (
	"sort"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

// Scoring constants. The values are empirically tuned, not derived; adjust
// them together with the ranking tests.
const (
	// Lexical signal weights (see matchSignals).
	exactPhraseScore = 10.0
	titleMatchFactor = 1.5
	bigramBodyScore  = 2.0
	bigramTitleScore = 3.0
	termBodyScore    = 1.0
	termTitleScore   = 1.5
	synonymDiscount  = 0.5

	// Category-weight shaping (see rankPassages).
	categoryWeightGain         = 2.0
	categoryAlignmentThreshold = 0.7
	categoryAlignmentBonus     = 5.0
	titleOverlapBonus          = 2.0
)

// rankPassages scores every document with a nonzero lexical signal, applies
// the category-weight prior, and returns the top candidates in descending
// score order. Ties keep corpus order (stable sort). Documents without any
// lexical overlap are excluded, never given a default score.
func rankPassages(index *corpusIndex, q queryTerms, weights domain.CategoryWeights, limit int) []domain.ScoredPassage {
	if index == nil || len(q.terms) == 0 {
		return nil
	}

	out := make([]domain.ScoredPassage, 0, 32)
	for _, doc := range index.indexed {
		match := matchSignals(doc, q)
		raw := match.Raw()
		if raw == 0 {
			continue
		}

		categoryWeight := weights.ForCategory(doc.doc.Category)
		score := raw * (1 + categoryWeight*categoryWeightGain)
		if categoryWeight > categoryAlignmentThreshold {
			score += categoryAlignmentBonus
		}
		score += float64(match.TitleOverlap) * titleOverlapBonus

		out = append(out, domain.ScoredPassage{
			Document: doc.doc,
			Score:    score,
			Match:    match,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return trimPassages(out, limit)
}

func trimPassages(passages []domain.ScoredPassage, limit int) []domain.ScoredPassage {
	if limit <= 0 || len(passages) <= limit {
		return passages
	}
	return passages[:limit]
}
