// Package extractor defines the capability interface for turning a captured
// image into a face encoding. Implementations vary in fidelity (local
// pixel heuristics, a DeepFace sidecar, AWS Rekognition); the production
// variant is chosen once at composition time, never per call.
package extractor

import (
	"context"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

// Extractor produces encodings and per-frame liveness signals from image
// bytes. Extract must be deterministic for identical input bytes.
type Extractor interface {
	// DetectFaces returns information about each face in the image.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)

	// Extract returns the encoding of the single face in the image.
	// It fails with domain.ErrInvalidImage, domain.ErrNoFaceDetected or
	// domain.ErrMultipleFaces; it never guesses among multiple subjects.
	Extract(ctx context.Context, image []byte) (domain.Encoding, error)

	// EyeSignal measures an eye-aspect-ratio-style openness signal for the
	// frame, consumed by the liveness detector. Higher means more open.
	EyeSignal(ctx context.Context, image []byte) (float64, error)

	// Name identifies the variant for logging and audit.
	Name() string
}

// DetectedFace describes one face found in an image.
type DetectedFace struct {
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	QualityScore float64     `json:"quality_score"`
	EyesOpen     *bool       `json:"eyes_open,omitempty"`
}

// BoundingBox is the face area in relative [0,1] image coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
