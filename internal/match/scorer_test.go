package match

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func randomEncoding(r *rand.Rand) domain.Encoding {
	enc := make(domain.Encoding, domain.EncodingDim)
	for i := range enc {
		enc[i] = r.Float64()*2 - 1
	}
	return enc
}

func TestScore_IdenticalEncodings(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	enc := randomEncoding(r)

	score := Score(enc, enc)

	// cosine=1, distance=0, |corr|=1 => 0.5 + 0.3 + 0.2
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestScore_FailClosed(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	valid := randomEncoding(r)

	tests := []struct {
		name string
		a    domain.Encoding
		b    domain.Encoding
	}{
		{"zero vector vs valid", make(domain.Encoding, domain.EncodingDim), valid},
		{"valid vs zero vector", valid, make(domain.Encoding, domain.EncodingDim)},
		{"both zero", make(domain.Encoding, domain.EncodingDim), make(domain.Encoding, domain.EncodingDim)},
		{"dimension mismatch", valid, valid[:64]},
		{"empty vectors", domain.Encoding{}, domain.Encoding{}},
		{"nil vectors", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Score(tt.a, tt.b))

			matched, confidence := NewScorer(DefaultThreshold).Match(tt.a, tt.b)
			assert.False(t, matched)
			assert.Equal(t, 0.0, confidence)
		})
	}
}

func TestScore_Symmetry(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		a := randomEncoding(r)
		b := randomEncoding(r)
		assert.Equal(t, Score(a, b), Score(b, a))
	}
}

func TestScore_Bounded(t *testing.T) {
	r := rand.New(rand.NewSource(99))

	for i := 0; i < 200; i++ {
		a := randomEncoding(r)
		b := randomEncoding(r)

		// Occasionally scale one vector far out of range.
		if i%3 == 0 {
			for j := range b {
				b[j] *= 1000
			}
		}

		score := Score(a, b)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}

func TestScore_OppositeVectorsClampToZero(t *testing.T) {
	a := make(domain.Encoding, domain.EncodingDim)
	b := make(domain.Encoding, domain.EncodingDim)
	for i := range a {
		a[i] = 1
		b[i] = -1
	}

	// Constant vectors have zero variance, so correlation contributes 0;
	// cosine is -1 and distance is large. The clamp keeps the score at 0.
	assert.Equal(t, 0.0, Score(a, b))
}

func TestScore_MonotonicWithPerturbation(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	base := randomEncoding(r)

	perturb := func(eps float64) domain.Encoding {
		out := make(domain.Encoding, len(base))
		for i := range base {
			out[i] = base[i] + eps*(r.Float64()*2-1)
		}
		return out
	}

	small := Score(base, perturb(0.01))
	large := Score(base, perturb(0.8))

	assert.Greater(t, small, large, "closer encodings must score higher")
	assert.Greater(t, small, 0.9)
}

func TestScorer_Match(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	enc := randomEncoding(r)

	scorer := NewScorer(0.65)

	matched, confidence := scorer.Match(enc, enc)
	assert.True(t, matched)
	assert.InDelta(t, 1.0, confidence, 1e-9)

	other := randomEncoding(r)
	matched, confidence = scorer.Match(enc, other)
	assert.False(t, matched)
	assert.Less(t, confidence, 0.65)
}

func TestNewScorer_InvalidThresholdFallsBack(t *testing.T) {
	assert.Equal(t, DefaultThreshold, NewScorer(0).Threshold())
	assert.Equal(t, DefaultThreshold, NewScorer(-1).Threshold())
	assert.Equal(t, DefaultThreshold, NewScorer(1.5).Threshold())
	assert.Equal(t, 0.7, NewScorer(0.7).Threshold())
}

func TestPearsonCorrelation_NaNGuard(t *testing.T) {
	flat := make(domain.Encoding, domain.EncodingDim)
	for i := range flat {
		flat[i] = 0.5
	}
	varied := make(domain.Encoding, domain.EncodingDim)
	for i := range varied {
		varied[i] = math.Sin(float64(i))
	}

	assert.Equal(t, 0.0, pearsonCorrelation(flat, varied))
	assert.Equal(t, 0.0, pearsonCorrelation(flat, flat))
}
