package interrogation

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// QuestionIndex detects repeated questions within a run. Each token maps
// to a roaring bitmap of question ordinals, so duplicate candidates are
// shortlisted by posting-list union instead of scanning every prior
// question, and only the shortlist is scored for similarity.
type QuestionIndex struct {
	postings  map[string]*roaring.Bitmap
	questions []string
	exact     map[string]int
	threshold float64
}

// NewQuestionIndex creates an empty index. threshold is the cosine score
// at which a candidate counts as a near-duplicate.
func NewQuestionIndex(threshold float64) *QuestionIndex {
	return &QuestionIndex{
		postings:  make(map[string]*roaring.Bitmap),
		exact:     make(map[string]int),
		threshold: threshold,
	}
}

// Add indexes an asked question.
func (qi *QuestionIndex) Add(question string) {
	norm := normalizeQuestion(question)
	ordinal := uint32(len(qi.questions))
	qi.questions = append(qi.questions, norm)
	qi.exact[norm] = int(ordinal)

	for _, token := range tokenize(norm) {
		bm, ok := qi.postings[token]
		if !ok {
			bm = roaring.New()
			qi.postings[token] = bm
		}
		bm.Add(ordinal)
	}
}

// Len reports how many questions are indexed.
func (qi *QuestionIndex) Len() int {
	return len(qi.questions)
}

// IsDuplicate reports whether candidate repeats a prior question, either
// exactly (case-insensitive) or as a near-duplicate at or above the
// threshold. The matched prior question is returned for diagnostics.
func (qi *QuestionIndex) IsDuplicate(candidate string) (bool, string) {
	norm := normalizeQuestion(candidate)
	if norm == "" {
		return false, ""
	}
	if _, ok := qi.exact[norm]; ok {
		return true, norm
	}

	tokens := tokenize(norm)
	if len(tokens) == 0 {
		return false, ""
	}
	lists := make([]*roaring.Bitmap, 0, len(tokens))
	for _, token := range tokens {
		if bm, ok := qi.postings[token]; ok {
			lists = append(lists, bm)
		}
	}
	if len(lists) == 0 {
		return false, ""
	}

	shortlist := roaring.FastOr(lists...)
	it := shortlist.Iterator()
	for it.HasNext() {
		prior := qi.questions[it.Next()]
		if CosineSimilarity(norm, prior) >= qi.threshold {
			return true, prior
		}
	}
	return false, ""
}

func normalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}
