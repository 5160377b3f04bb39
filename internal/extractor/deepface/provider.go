// Package deepface is the extractor variant backed by a DeepFace sidecar.
// Embeddings come from a real face model; the per-frame eye signal is
// measured locally since the DeepFace API exposes no eyelid state.
package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"

	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
	"github.com/tryshirtonline/face-attandance/internal/extractor/local"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Extractor implements extractor.Extractor using the DeepFace API.
type Extractor struct {
	client *Client
	eyes   *local.Extractor
}

func New(config Config) *Extractor {
	return &Extractor{
		client: NewClient(config),
		eyes:   local.New(),
	}
}

func (e *Extractor) Name() string {
	return "deepface"
}

// DetectFaces detects faces in the image via /represent facial areas.
func (e *Extractor) DetectFaces(ctx context.Context, image []byte) ([]extractor.DetectedFace, error) {
	resp, err := e.represent(ctx, image)
	if err != nil {
		return nil, err
	}

	faces := make([]extractor.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		faceArea := float64(result.FacialArea.W * result.FacialArea.H)

		faces = append(faces, extractor.DetectedFace{
			BoundingBox: extractor.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Confidence:   areaConfidence(faceArea),
			QualityScore: areaQuality(faceArea),
		})
	}

	return faces, nil
}

// Extract returns the model embedding of the single face in the image.
func (e *Extractor) Extract(ctx context.Context, image []byte) (domain.Encoding, error) {
	resp, err := e.represent(ctx, image)
	if err != nil {
		return nil, err
	}

	if len(resp.Results) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if len(resp.Results) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	embedding := resp.Results[0].Embedding
	if len(embedding) != domain.EncodingDim {
		return nil, fmt.Errorf("%w: got %d, want %d (check the configured model)",
			ErrWrongDimension, len(embedding), domain.EncodingDim)
	}

	return domain.Encoding(embedding), nil
}

// EyeSignal delegates to the local pixel measurement.
func (e *Extractor) EyeSignal(ctx context.Context, image []byte) (float64, error) {
	return e.eyes.EyeSignal(ctx, image)
}

func (e *Extractor) represent(ctx context.Context, image []byte) (*RepresentResponse, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := e.client.Represent(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("deepface represent: %w", err)
	}

	return resp, nil
}

// areaConfidence estimates confidence from face area; DeepFace itself
// reports none.
func areaConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

func areaQuality(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.4
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.6 + (normalized * 0.35)
}

var _ extractor.Extractor = (*Extractor)(nil)
