// Package detect guesses skin concerns from a face photo.
//
// The Heuristic detector is a crude brightness/edge rule over fixed regions
// of a frontal photo. It exists so the photo flow works end to end; a real
// classifier can replace it by implementing Detector.
package detect

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
)

// ErrUnsupportedImage is returned when a file is not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Detector returns the concern names it finds in an image. It never fails;
// an image it cannot judge yields no concerns.
type Detector interface {
	DetectConcerns(img image.Image) []string
}

// Concern names produced by Heuristic.
const (
	ConcernDarkCircles = "dark circles"
	ConcernAcne        = "acne"
)

// Heuristic flags "dark circles" when the under-eye region is dark on
// average and "acne" when the cheek region holds enough strong edges.
type Heuristic struct {
	// EyeRegion is averaged for brightness, in image coordinates relative
	// to the image's top-left corner.
	EyeRegion image.Rectangle
	// CheekRegion is scanned for edges.
	CheekRegion image.Rectangle
	// MinSize is the smallest image (exclusive) the rules apply to.
	MinSize image.Point
	// DarkBelow is the mean 8-bit luminance under which the eye region counts as dark.
	DarkBelow float64
	// EdgeMagnitude is the Sobel gradient magnitude at which a pixel is an edge.
	EdgeMagnitude float64
	// MinEdgePixels is how many edge pixels flag acne.
	MinEdgePixels int
}

// NewHeuristic returns the detector with its default calibration.
func NewHeuristic() *Heuristic {
	return &Heuristic{
		EyeRegion:     image.Rect(150, 100, 300, 200),
		CheekRegion:   image.Rect(100, 200, 200, 300),
		MinSize:       image.Pt(300, 200),
		DarkBelow:     80,
		EdgeMagnitude: 200,
		MinEdgePixels: 4,
	}
}

// DetectConcerns implements Detector.
func (h *Heuristic) DetectConcerns(img image.Image) []string {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() <= h.MinSize.X || b.Dy() <= h.MinSize.Y {
		return nil
	}

	gray := toGray(img)
	var found []string
	if eye := h.EyeRegion.Intersect(gray.Rect); !eye.Empty() && meanLuma(gray, eye) < h.DarkBelow {
		found = append(found, ConcernDarkCircles)
	}
	if cheek := h.CheekRegion.Intersect(gray.Rect); !cheek.Empty() && countEdges(gray, cheek, h.EdgeMagnitude) >= h.MinEdgePixels {
		found = append(found, ConcernAcne)
	}
	return found
}

// DecodeFile opens and decodes a JPEG, PNG or GIF file.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Decode decodes an in-memory JPEG, PNG or GIF image.
func Decode(data []byte) (image.Image, error) {
	return decode(bytes.NewReader(data))
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, ErrUnsupportedImage
		}
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// DetectFile decodes path and runs d over it.
func DetectFile(d Detector, path string) ([]string, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return d.DetectConcerns(img), nil
}

// toGray copies img into a grayscale image whose bounds start at the origin.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)))
		}
	}
	return out
}

func meanLuma(g *image.Gray, r image.Rectangle) float64 {
	var sum int
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			sum += int(g.GrayAt(x, y).Y)
		}
	}
	return float64(sum) / float64(r.Dx()*r.Dy())
}

// countEdges counts pixels in r whose Sobel gradient magnitude reaches
// threshold. Border pixels of the image are skipped.
func countEdges(g *image.Gray, r image.Rectangle, threshold float64) int {
	inner := image.Rect(g.Rect.Min.X+1, g.Rect.Min.Y+1, g.Rect.Max.X-1, g.Rect.Max.Y-1)
	r = r.Intersect(inner)
	at := func(x, y int) int { return int(g.GrayAt(x, y).Y) }

	limit := threshold * threshold
	count := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) - at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if float64(gx*gx+gy*gy) >= limit {
				count++
			}
		}
	}
	return count
}
