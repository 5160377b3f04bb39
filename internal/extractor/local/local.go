// Package local is a pure-Go extractor variant. It satisfies the
// structural contract (fixed-length deterministic vectors, single-face
// rejection) using luminance-grid heuristics rather than a learned model,
// which makes it suitable for development, testing and air-gapped
// deployments. Deployments that need perceptual accuracy should compose
// the deepface or rekognition variant instead.
package local

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/tryshirtonline/face-attandance/internal/domain"
	"github.com/tryshirtonline/face-attandance/internal/extractor"
)

const (
	// detectGrid is the square downsample used for face-region detection.
	detectGrid = 32
	// encodeW x encodeH luminance cells form the 128-D encoding.
	encodeW = 16
	encodeH = 8

	// Mid-tone luminance band treated as face-candidate cells.
	candidateMin = 45
	candidateMax = 220

	// Component size bounds, in cells of the detect grid. Anything
	// smaller is noise; anything larger is background.
	minComponentCells = 8
	maxComponentCells = (detectGrid * detectGrid * 3) / 5
)

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Name() string {
	return "local"
}

// DetectFaces finds mid-tone high-contrast regions in a coarse luminance
// grid and reports each as a face.
func (e *Extractor) DetectFaces(ctx context.Context, imageBytes []byte) ([]extractor.DetectedFace, error) {
	img, err := decode(imageBytes)
	if err != nil {
		return nil, err
	}

	grid := luminanceGrid(img, detectGrid, detectGrid)
	components := findComponents(grid, detectGrid, detectGrid)

	faces := make([]extractor.DetectedFace, 0, len(components))
	for _, comp := range components {
		faces = append(faces, extractor.DetectedFace{
			BoundingBox:  comp.boundingBox(detectGrid, detectGrid),
			Confidence:   sizeConfidence(len(comp.cells)),
			QualityScore: comp.contrast(grid, detectGrid),
		})
	}

	return faces, nil
}

// Extract produces the 128-D encoding of the single face in the image.
// The vector is a normalized 16x8 luminance grid of the full frame, so
// identical bytes always produce identical encodings.
func (e *Extractor) Extract(ctx context.Context, imageBytes []byte) (domain.Encoding, error) {
	faces, err := e.DetectFaces(ctx, imageBytes)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	if len(faces) > 1 {
		return nil, domain.ErrMultipleFaces
	}

	img, err := decode(imageBytes)
	if err != nil {
		return nil, err
	}

	grid := luminanceGrid(img, encodeW, encodeH)
	encoding := make(domain.Encoding, domain.EncodingDim)
	for i, v := range grid {
		encoding[i] = (v - 127.5) / 127.5
	}

	return encoding, nil
}

// EyeSignal measures luminance contrast in the upper band of the face
// region. Open eyes (dark pupils against sclera) produce high contrast;
// closed lids flatten the band. The value is scaled onto the usual
// eye-aspect-ratio range so the default closure threshold of 0.25 applies.
func (e *Extractor) EyeSignal(ctx context.Context, imageBytes []byte) (float64, error) {
	img, err := decode(imageBytes)
	if err != nil {
		return 0, err
	}

	grid := luminanceGrid(img, detectGrid, detectGrid)
	components := findComponents(grid, detectGrid, detectGrid)
	if len(components) != 1 {
		return 0, domain.ErrNoFaceDetected
	}

	box := components[0].boundingBox(detectGrid, detectGrid)

	// Eye band: 25%-45% down the face box, central 60% of its width.
	x0 := int((box.X + 0.2*box.Width) * detectGrid)
	x1 := int((box.X + 0.8*box.Width) * detectGrid)
	y0 := int((box.Y + 0.25*box.Height) * detectGrid)
	y1 := int((box.Y + 0.45*box.Height) * detectGrid)

	sd := bandStddev(grid, detectGrid, x0, x1, y0, y1)

	signal := 0.1 + 0.3*math.Min(1, sd/64)
	return signal, nil
}

var _ extractor.Extractor = (*Extractor)(nil)

func decode(imageBytes []byte) (image.Image, error) {
	if len(imageBytes) == 0 {
		return nil, domain.ErrInvalidImage
	}
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	return img, nil
}

// luminanceGrid downscales the image to w x h and returns per-cell
// luminance in [0,255], row-major.
func luminanceGrid(img image.Image, w, h int) []float64 {
	resized := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Over, nil)

	grid := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			// ITU-R BT.601 luma on 8-bit channels.
			grid[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return grid
}

type component struct {
	cells []int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c *component) boundingBox(w, h int) extractor.BoundingBox {
	return extractor.BoundingBox{
		X:      float64(c.minX) / float64(w),
		Y:      float64(c.minY) / float64(h),
		Width:  float64(c.maxX-c.minX+1) / float64(w),
		Height: float64(c.maxY-c.minY+1) / float64(h),
	}
}

// contrast returns the normalized luminance spread inside the component.
func (c *component) contrast(grid []float64, w int) float64 {
	if len(c.cells) == 0 {
		return 0
	}
	var mean float64
	for _, idx := range c.cells {
		mean += grid[idx]
	}
	mean /= float64(len(c.cells))

	var variance float64
	for _, idx := range c.cells {
		d := grid[idx] - mean
		variance += d * d
	}
	variance /= float64(len(c.cells))

	return math.Min(1, math.Sqrt(variance)/64)
}

// findComponents labels 4-connected runs of face-candidate cells and keeps
// those whose size is plausible for a face region.
func findComponents(grid []float64, w, h int) []*component {
	visited := make([]bool, len(grid))
	var components []*component

	candidate := func(idx int) bool {
		return grid[idx] >= candidateMin && grid[idx] <= candidateMax
	}

	for start := range grid {
		if visited[start] || !candidate(start) {
			continue
		}

		comp := &component{minX: w, minY: h}
		stack := []int{start}
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp.cells = append(comp.cells, idx)

			x, y := idx%w, idx/w
			comp.minX = min(comp.minX, x)
			comp.maxX = max(comp.maxX, x)
			comp.minY = min(comp.minY, y)
			comp.maxY = max(comp.maxY, y)

			for _, n := range neighbors(idx, w, h) {
				if !visited[n] && candidate(n) {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		if len(comp.cells) >= minComponentCells && len(comp.cells) <= maxComponentCells {
			components = append(components, comp)
		}
	}

	return components
}

func neighbors(idx, w, h int) []int {
	x, y := idx%w, idx/w
	out := make([]int, 0, 4)
	if x > 0 {
		out = append(out, idx-1)
	}
	if x < w-1 {
		out = append(out, idx+1)
	}
	if y > 0 {
		out = append(out, idx-w)
	}
	if y < h-1 {
		out = append(out, idx+w)
	}
	return out
}

func bandStddev(grid []float64, w, x0, x1, y0, y1 int) float64 {
	var sum, count float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += grid[y*w+x]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	mean := sum / count

	var variance float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			d := grid[y*w+x] - mean
			variance += d * d
		}
	}
	return math.Sqrt(variance / count)
}

// sizeConfidence scales detection confidence with region size, the same
// heuristic used when a backend reports no confidence of its own.
func sizeConfidence(cells int) float64 {
	normalized := math.Min(1, float64(cells-minComponentCells)/float64(maxComponentCells-minComponentCells))
	return 0.7 + normalized*0.29
}
