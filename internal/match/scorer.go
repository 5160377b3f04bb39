// Package match scores the similarity of two face encodings.
//
// A single metric is brittle for hash- or grid-derived encodings, so the
// score blends three complementary views of the vectors: cosine similarity
// (scale invariant), normalized Euclidean distance (magnitude) and the
// Pearson correlation (shape). Degenerate inputs fail closed: they score 0
// and never match.
package match

import (
	"math"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

// DefaultThreshold is the combined score above which two encodings are
// considered the same face.
const DefaultThreshold = 0.65

const (
	weightCosine      = 0.5
	weightEuclidean   = 0.3
	weightCorrelation = 0.2
)

// Scorer compares encodings against a configurable match threshold.
type Scorer struct {
	threshold float64
}

// NewScorer creates a Scorer with the given threshold. Thresholds outside
// (0,1) fall back to DefaultThreshold.
func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Scorer{threshold: threshold}
}

// Threshold returns the configured match threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score returns the combined similarity of two encodings in [0,1].
// Mismatched dimensions, empty or zero-norm vectors score 0.
func (s *Scorer) Score(known, candidate domain.Encoding) float64 {
	return Score(known, candidate)
}

// Match reports whether the combined score exceeds the threshold, along
// with the score itself.
func (s *Scorer) Match(known, candidate domain.Encoding) (bool, float64) {
	score := Score(known, candidate)
	return score > s.threshold, score
}

// Score computes 0.5*cosine + 0.3*(1 - euclidean/sqrt(dim)) + 0.2*|pearson|,
// clamped to [0,1]. The formula is symmetric in its arguments.
func Score(a, b domain.Encoding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	cos, ok := cosineSimilarity(a, b)
	if !ok {
		return 0
	}

	dist := euclideanDistance(a, b) / math.Sqrt(float64(len(a)))
	corr := pearsonCorrelation(a, b)

	score := weightCosine*cos + weightEuclidean*(1-dist) + weightCorrelation*math.Abs(corr)

	return clamp01(score)
}

// cosineSimilarity returns the cosine of the angle between a and b.
// ok is false when either vector has zero norm.
func cosineSimilarity(a, b domain.Encoding) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0, false
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}

func euclideanDistance(a, b domain.Encoding) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// pearsonCorrelation returns the correlation coefficient of a and b.
// Zero-variance vectors produce NaN in the textbook formula; those are
// reported as 0 so they contribute nothing to the combined score.
func pearsonCorrelation(a, b domain.Encoding) float64 {
	n := float64(len(a))

	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0
	}

	corr := cov / math.Sqrt(varA*varB)
	if math.IsNaN(corr) {
		return 0
	}
	return corr
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
