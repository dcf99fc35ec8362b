package similarity

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectors is the cosine similarity of two embeddings, 0 when they are empty
// or of different dimension
func Vectors(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// Text is the cosine similarity of the token count vectors of a and b
func Text(a, b string) float64 {
	ca, cb := counts(a), counts(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for tok, n := range ca {
		magA += float64(n * n)
		dot += float64(n * cb[tok])
	}
	for _, n := range cb {
		magB += float64(n * n)
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func counts(text string) map[string]int {
	c := make(map[string]int)
	for _, tok := range Tokenize(text) {
		c[tok]++
	}
	return c
}

// Scored is a candidate with its similarity
type Scored[T any] struct {
	Item  T
	Score float64
}

// Rank keeps candidates scoring at least threshold, best first, at most limit.
// Ties keep input order.
func Rank[T any](items []T, score func(T) float64, threshold float64, limit int) []Scored[T] {
	ranked := make([]Scored[T], 0, len(items))
	for _, it := range items {
		s := score(it)
		if s >= threshold {
			ranked = append(ranked, Scored[T]{Item: it, Score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
