// Package features maps a (profile, candidate) pair to comparable feature values.
package features

import (
	"math"
	"strings"
)

// NeutralSemanticScore is used when either profile has no embedding vector.
// Missing data degrades to a neutral score instead of failing the computation.
const NeutralSemanticScore = 0.5

// normalizeToken lowercases and trims a set member so overlap comparison is
// case-insensitive.
func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if token := normalizeToken(item); token != "" {
			set[token] = struct{}{}
		}
	}
	return set
}

// Jaccard computes the Jaccard similarity of two string sets: intersection
// size over union size. Both sets empty is defined as 0, not undefined.
// The result is symmetric in its arguments.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Intersection returns the normalized tokens present in both sets, in the
// order they appear in a.
func Intersection(a, b []string) []string {
	setB := toSet(b)
	seen := make(map[string]struct{})
	var matched []string
	for _, item := range a {
		token := normalizeToken(item)
		if token == "" {
			continue
		}
		if _, ok := setB[token]; !ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		matched = append(matched, token)
	}
	return matched
}

// NumericCloseness maps the absolute difference of two values to [0,1],
// scaled by the field's declared range. Identical values score 1.
func NumericCloseness(a, b, min, max float64) float64 {
	if max <= min {
		return 0
	}
	closeness := 1 - math.Abs(a-b)/(max-min)
	return clamp01(closeness)
}

// CosineSimilarity computes the cosine similarity of two vectors in [-1,1].
// Mismatched lengths or a zero-norm vector score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SemanticSimilarity compares two embedding vectors for scoring, clipping
// the cosine similarity to [0,1]. A missing vector on either side degrades
// to NeutralSemanticScore.
func SemanticSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return NeutralSemanticScore
	}
	return clamp01(CosineSimilarity(a, b))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
