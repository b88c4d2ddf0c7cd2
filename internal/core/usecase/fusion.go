package usecase

import (
	"sort"

	"github.com/grainlab/corpus-assistant/internal/core/domain"
)

type fusedPassage struct {
	passage domain.ScoredPassage
	score   float64
}

// fusePassagesRRF merges the locally ranked list with externally retrieved
// passages by reciprocal-rank fusion. When both lists carry the same
// document, the local passage wins because it keeps the match diagnostics.
func fusePassagesRRF(local, external []domain.ScoredPassage, rrfK int) []domain.ScoredPassage {
	if rrfK <= 0 {
		rrfK = 60
	}
	if len(external) == 0 {
		return local
	}

	acc := make(map[string]fusedPassage, len(local)+len(external))
	order := make([]string, 0, len(local)+len(external))

	addList := func(passages []domain.ScoredPassage, preferred bool) {
		for rank, passage := range passages {
			key := passageKey(passage)
			candidate, seen := acc[key]
			if !seen {
				order = append(order, key)
				candidate.passage = passage
			} else if preferred {
				candidate.passage = passage
			}
			candidate.score += 1.0 / float64(rrfK+rank+1)
			acc[key] = candidate
		}
	}

	addList(local, true)
	addList(external, false)

	out := make([]domain.ScoredPassage, 0, len(acc))
	for _, key := range order {
		fused := acc[key]
		passage := fused.passage
		passage.Score = fused.score
		out = append(out, passage)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func passageKey(passage domain.ScoredPassage) string {
	if passage.Document == nil {
		return ""
	}
	if passage.Document.URL != "" {
		return passage.Document.URL
	}
	return passage.Document.Title + "|" + string(passage.Document.Category)
}
