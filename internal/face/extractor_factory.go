package face

import (
	"context"
	"fmt"

	"github.com/tryshirtonline/face-attandance/internal/config"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
	"github.com/tryshirtonline/face-attandance/internal/extractor/deepface"
	"github.com/tryshirtonline/face-attandance/internal/extractor/local"
	"github.com/tryshirtonline/face-attandance/internal/extractor/rekognition"
)

// ExtractorType defines supported face extractor backends
type ExtractorType string

const (
	// ExtractorTypeLocal is the in-process pixel heuristic (dev/test, no external services)
	ExtractorTypeLocal ExtractorType = "local"
	// ExtractorTypeDeepFace is the DeepFace sidecar (self-hosted embeddings)
	ExtractorTypeDeepFace ExtractorType = "deepface"
	// ExtractorTypeRekognition is the AWS Rekognition backend (cloud, for prod)
	ExtractorTypeRekognition ExtractorType = "rekognition"
)

// NewExtractor creates an Extractor instance based on configuration
//
// Environment variables:
//   - EXTRACTOR: "local", "deepface" or "rekognition" (default: "local")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID: AWS credentials (via AWS SDK credential chain)
//   - AWS_SECRET_ACCESS_KEY: AWS credentials (via AWS SDK credential chain)
func NewExtractor(ctx context.Context, cfg *config.Config) (extractor.Extractor, error) {
	extractorType := ExtractorType(cfg.Extractor)

	switch extractorType {
	case ExtractorTypeRekognition:
		return createRekognitionExtractor(ctx, cfg)

	case ExtractorTypeDeepFace:
		return createDeepFaceExtractor(cfg), nil

	case ExtractorTypeLocal, "":
		// Default to the local extractor for dev/test environments
		return local.New(), nil

	default:
		return nil, fmt.Errorf("unknown extractor type: %s (supported: %s, %s, %s)",
			cfg.Extractor, ExtractorTypeLocal, ExtractorTypeDeepFace, ExtractorTypeRekognition)
	}
}

// createRekognitionExtractor creates an AWS Rekognition extractor instance
func createRekognitionExtractor(ctx context.Context, cfg *config.Config) (extractor.Extractor, error) {
	rekogConfig := rekognition.Config{
		Region: cfg.AWSRegion,
	}
	if rekogConfig.Region == "" {
		rekogConfig.Region = rekognition.DefaultConfig().Region
	}

	ext, err := rekognition.New(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition extractor: %w", err)
	}

	return ext, nil
}

// createDeepFaceExtractor creates a DeepFace extractor instance
func createDeepFaceExtractor(cfg *config.Config) extractor.Extractor {
	deepfaceConfig := deepface.Config{
		BaseURL: cfg.DeepFaceURL,
	}

	// Use defaults for other fields (timeout, model, detector, retry)
	if deepfaceConfig.BaseURL == "" {
		deepfaceConfig.BaseURL = deepface.DefaultConfig().BaseURL
	}

	return deepface.New(deepfaceConfig)
}
