package domain

import "math"

// EncodingDim is the fixed dimensionality of a face encoding. Every
// extractor variant must produce vectors of exactly this length.
const EncodingDim = 128

// TemplateVersion identifies the encoding scheme a stored template was
// produced with. Templates from a different scheme never match.
const TemplateVersion = 1

// Encoding is a fixed-length numeric feature vector representing a face.
type Encoding []float64

// Valid reports whether the encoding has the expected dimensionality and
// contains only finite values.
func (e Encoding) Valid() bool {
	if len(e) != EncodingDim {
		return false
	}
	for _, v := range e {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm returns the Euclidean norm of the encoding.
func (e Encoding) Norm() float64 {
	var sum float64
	for _, v := range e {
		sum += v * v
	}
	return math.Sqrt(sum)
}
