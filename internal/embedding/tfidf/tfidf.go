package tfidf

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrNotFitted is returned by Transform before Fit has built a vocabulary.
var ErrNotFitted = errors.New("tfidf vectorizer not fitted")

// Vectorizer is a TF-IDF model over a small, local corpus.
// Terms are lower-cased runs of two or more letters, digits or underscores;
// weights are raw term counts times smoothed IDF, L2-normalized.
type Vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	tokenPattern *regexp.Regexp
}

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
	}
}

// Fit builds the vocabulary and IDF values from corpus.
// A corpus without any token leaves an empty vocabulary: every text then
// maps to the zero vector.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF fit")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	// Create stable ordering for vocabulary
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return nil
}

// Dimension returns the vocabulary size after Fit.
func (v *Vectorizer) Dimension() int { return len(v.idf) }

// Transform computes the L2-normalized TF-IDF vector of text.
// Out-of-vocabulary terms are ignored.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if v.idf == nil {
		return nil, ErrNotFitted
	}
	vec := make([]float64, len(v.idf))
	for _, tok := range v.Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}
	norm := 0.0
	for i, count := range vec {
		if count == 0 {
			continue
		}
		vec[i] = count * v.idf[i]
		norm += vec[i] * vec[i]
	}
	// L2 normalize
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// Tokenize lower-cases text and returns its terms in order.
func (v *Vectorizer) Tokenize(text string) []string {
	return v.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Cosine returns the cosine similarity of a and b. Zero vectors score 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
