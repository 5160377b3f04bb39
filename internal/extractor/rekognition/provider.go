// Package rekognition implements the extractor interface using the AWS
// Rekognition DetectFaces API. Rekognition does not expose raw embeddings,
// so the encoding is derived from the geometry it does return: normalized
// facial landmark positions, head pose and quality metrics. Encodings from
// this variant are only comparable against templates enrolled with it.
package rekognition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Eye signal mapping. Rekognition reports EyesOpen as a boolean with a
// confidence; the detector consumes a continuous openness value, so the
// boolean is projected onto either side of the closure threshold with the
// confidence as the distance from it.
const (
	signalMidpoint = 0.25
	signalSpread   = 0.15
)

// Extractor implements extractor.Extractor using AWS Rekognition
type Extractor struct {
	client *Client
}

var _ extractor.Extractor = (*Extractor)(nil)

// New creates a Rekognition-backed extractor
func New(ctx context.Context, cfg Config) (*Extractor, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Extractor{client: client}, nil
}

// Name identifies the variant for logging and audit
func (e *Extractor) Name() string {
	return "rekognition"
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return domain.ErrInvalidImage
	}
	if len(image) < minImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too small (%d bytes, minimum %d)", len(image), minImageSize))
	}
	if len(image) > maxImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too large (%d bytes, maximum %d)", len(image), maxImageSize))
	}
	return nil
}

func (e *Extractor) detect(ctx context.Context, image []byte) (*rekognition.DetectFacesOutput, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := e.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case errCodeAccessDenied:
				return nil, fmt.Errorf("detect faces: %w", ErrInvalidCredentials)
			case errCodeInvalidParameter:
				return nil, domain.ErrInvalidImage.WithError(err)
			case errCodeThrottling:
				return nil, fmt.Errorf("detect faces: %w: %w", ErrServiceUnavailable, err)
			}
		}
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	return output, nil
}

// DetectFaces detects faces in an image using the Rekognition DetectFaces API
// Returns an empty slice if no faces are detected (not an error)
func (e *Extractor) DetectFaces(ctx context.Context, image []byte) ([]extractor.DetectedFace, error) {
	output, err := e.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	faces := make([]extractor.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		face := extractor.DetectedFace{
			Confidence:   0,
			QualityScore: qualityScore(detail.Quality),
		}
		if detail.BoundingBox != nil {
			face.BoundingBox = extractor.BoundingBox{
				X:      f32(detail.BoundingBox.Left),
				Y:      f32(detail.BoundingBox.Top),
				Width:  f32(detail.BoundingBox.Width),
				Height: f32(detail.BoundingBox.Height),
			}
		}
		if detail.Confidence != nil {
			face.Confidence = float64(*detail.Confidence) / 100.0
		}
		if detail.EyesOpen != nil {
			open := detail.EyesOpen.Value
			face.EyesOpen = &open
		}
		faces = append(faces, face)
	}

	return faces, nil
}

// Extract returns the encoding of the single face in the image
// The encoding is derived from normalized landmark geometry, head pose and
// quality metrics, padded deterministically to the encoding dimension
func (e *Extractor) Extract(ctx context.Context, image []byte) (domain.Encoding, error) {
	output, err := e.detect(ctx, image)
	if err != nil {
		return nil, err
	}

	switch len(output.FaceDetails) {
	case 0:
		return nil, domain.ErrNoFaceDetected
	case 1:
	default:
		return nil, domain.ErrMultipleFaces.WithError(fmt.Errorf("%d faces detected", len(output.FaceDetails)))
	}

	enc := encodeFaceDetail(output.FaceDetails[0])
	if !enc.Valid() {
		return nil, domain.ErrInternal.WithError(errors.New("rekognition response produced an invalid encoding"))
	}
	return enc, nil
}

// EyeSignal measures an openness signal for the single face in the frame
// The boolean EyesOpen attribute is projected onto a continuous range so a
// confident "closed" lands well below the detector's closure threshold and a
// confident "open" well above it
func (e *Extractor) EyeSignal(ctx context.Context, image []byte) (float64, error) {
	output, err := e.detect(ctx, image)
	if err != nil {
		return 0, err
	}

	switch len(output.FaceDetails) {
	case 0:
		return 0, domain.ErrNoFaceDetected
	case 1:
	default:
		return 0, domain.ErrMultipleFaces.WithError(fmt.Errorf("%d faces detected", len(output.FaceDetails)))
	}

	eyes := output.FaceDetails[0].EyesOpen
	if eyes == nil {
		// No eye attribute in the response; report the midpoint so the
		// frame neither counts as a closure nor as a recovery.
		return signalMidpoint, nil
	}

	confidence := 0.5
	if eyes.Confidence != nil {
		confidence = float64(*eyes.Confidence) / 100.0
	}
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	if eyes.Value {
		return signalMidpoint + signalSpread*confidence, nil
	}
	return signalMidpoint - signalSpread*confidence, nil
}

// encodeFaceDetail maps a Rekognition face detail onto a fixed-dimension
// encoding. Landmark coordinates are expressed relative to the bounding box
// and centered, so the encoding is invariant to where the face sits in the
// frame. The tail of the vector carries pose, quality and inter-landmark
// distances, then repeats the landmark block until the dimension is filled.
func encodeFaceDetail(detail types.FaceDetail) domain.Encoding {
	var left, top, width, height float64
	if detail.BoundingBox != nil {
		left = f32(detail.BoundingBox.Left)
		top = f32(detail.BoundingBox.Top)
		width = f32(detail.BoundingBox.Width)
		height = f32(detail.BoundingBox.Height)
	}
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	landmarks := append([]types.Landmark(nil), detail.Landmarks...)
	sort.Slice(landmarks, func(i, j int) bool {
		return landmarks[i].Type < landmarks[j].Type
	})

	type point struct{ x, y float64 }
	points := make([]point, 0, len(landmarks))
	for _, lm := range landmarks {
		rx := (f32(lm.X) - left) / width
		ry := (f32(lm.Y) - top) / height
		points = append(points, point{x: clampUnit(rx), y: clampUnit(ry)})
	}

	features := make([]float64, 0, domain.EncodingDim)
	for _, p := range points {
		// Center on the box so a frontal face yields values around zero.
		features = append(features, 2*p.x-1, 2*p.y-1)
	}

	if detail.Pose != nil {
		features = append(features,
			clampAngle(detail.Pose.Pitch),
			clampAngle(detail.Pose.Roll),
			clampAngle(detail.Pose.Yaw),
		)
	} else {
		features = append(features, 0, 0, 0)
	}

	if detail.Quality != nil {
		features = append(features,
			scaleScore(detail.Quality.Brightness),
			scaleScore(detail.Quality.Sharpness),
		)
	} else {
		features = append(features, 0, 0)
	}

	// Distances between consecutive landmarks capture face shape beyond
	// absolute positions.
	for i := 1; i < len(points); i++ {
		dx := points[i].x - points[i-1].x
		dy := points[i].y - points[i-1].y
		features = append(features, clampUnit(math.Sqrt(dx*dx+dy*dy))*2-1)
	}

	enc := make(domain.Encoding, domain.EncodingDim)
	if len(features) == 0 {
		return enc
	}
	for i := range enc {
		enc[i] = features[i%len(features)]
	}
	return enc
}

// qualityScore computes an overall quality score from Rekognition quality
// metrics. Returns a score between 0.0 (poor) and 1.0 (excellent).
func qualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	brightness := 0.0
	sharpness := 0.0
	if quality.Brightness != nil {
		brightness = float64(*quality.Brightness) / 100.0
	}
	if quality.Sharpness != nil {
		sharpness = float64(*quality.Sharpness) / 100.0
	}

	score := (brightness + sharpness) / 2.0
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func f32(v *float32) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampAngle normalizes a pose angle in degrees to [-1, 1]
func clampAngle(v *float32) float64 {
	if v == nil {
		return 0
	}
	n := float64(*v) / 90.0
	if n < -1 {
		return -1
	}
	if n > 1 {
		return 1
	}
	return n
}

// scaleScore maps a 0-100 metric to [-1, 1]
func scaleScore(v *float32) float64 {
	if v == nil {
		return 0
	}
	n := float64(*v)/50.0 - 1
	if n < -1 {
		return -1
	}
	if n > 1 {
		return 1
	}
	return n
}
