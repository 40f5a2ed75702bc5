package interrogation

import (
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
)

// ConfidencePhrase is the canonical statement an interrogator emits when
// it considers the question fully answered. Detecting it (verbatim or by
// similarity) ends the probing phase.
const ConfidencePhrase = "Thank you, I am now in a position to answer the question with confidence."

// termVectorDims sizes the hashed term-frequency space. Collisions only
// nudge scores, they never flip an exact match.
const termVectorDims = 512

// CosineSimilarity scores two texts in [0,1] using hashed bag-of-words
// term frequencies. 1 means identical token distributions.
func CosineSimilarity(a, b string) float64 {
	va := termVector(a)
	vb := termVector(b)

	normA := floats.Norm(va, 2)
	normB := floats.Norm(vb, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (normA * normB)
}

// SignalsConfidence reports whether text declares the confidence phrase,
// either verbatim as a substring or as a close paraphrase scored against
// threshold.
func SignalsConfidence(text string, threshold float64) bool {
	if strings.Contains(text, ConfidencePhrase) {
		return true
	}
	return CosineSimilarity(text, ConfidencePhrase) >= threshold
}

func termVector(text string) []float64 {
	v := make([]float64, termVectorDims)
	for _, token := range tokenize(text) {
		v[hashToken(token)]++
	}
	return v
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// hashToken is djb2, kept deterministic so vectors are stable across runs.
func hashToken(s string) int {
	hash := uint32(5381)
	for _, r := range s {
		hash = ((hash << 5) + hash) + uint32(r)
	}
	return int(hash % termVectorDims)
}
