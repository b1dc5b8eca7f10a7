// Package canvas provides the persistent drawing surface and the glow
// compositor that lays it over the camera frame.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/ayusman/ironcanvas/internal/config"
	"gocv.io/x/gocv"
)

// ErrSizeMismatch is returned when a target frame does not match the canvas size.
var ErrSizeMismatch = errors.New("frame size does not match canvas")

// Surface is a BGR canvas the size of the video frame. Strokes accumulate
// until Clear. The scratch Mats used by Composite are allocated once and
// reused every frame.
type Surface struct {
	width  int
	height int
	glow   config.Glow

	mu     sync.Mutex
	canvas gocv.Mat

	small gocv.Mat
	blur  gocv.Mat
	bloom gocv.Mat
	final gocv.Mat
	gray  gocv.Mat
	mask  gocv.Mat
}

// New allocates an all-black canvas of the given size.
func New(width, height int, glow config.Glow) *Surface {
	return &Surface{
		width:  width,
		height: height,
		glow:   glow,
		canvas: gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), height, width, gocv.MatTypeCV8UC3),
		small:  gocv.NewMat(),
		blur:   gocv.NewMat(),
		bloom:  gocv.NewMat(),
		final:  gocv.NewMat(),
		gray:   gocv.NewMat(),
		mask:   gocv.NewMat(),
	}
}

// Size returns the canvas dimensions.
func (s *Surface) Size() image.Point {
	return image.Pt(s.width, s.height)
}

// Clear zeroes every pixel.
func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.SetTo(gocv.NewScalar(0, 0, 0, 0))
}

// Stroke draws a segment from -> to with a round cap at to. thickness is the
// line width; the cap radius is half of it. from == to leaves a single dot.
func (s *Surface) Stroke(from, to image.Point, c color.RGBA, thickness int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gocv.Line(&s.canvas, from, to, c, thickness)
	gocv.Circle(&s.canvas, to, thickness/2, c, -1)
}

// Painted returns the number of non-black pixels on the canvas.
func (s *Surface) Painted() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(s.canvas, &gray, gocv.ColorBGRToGray)
	return gocv.CountNonZero(gray)
}

// At returns the canvas colour at pt as (B, G, R).
func (s *Surface) At(pt image.Point) [3]uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.canvas.GetVecbAt(pt.Y, pt.X)
	return [3]uint8{v[0], v[1], v[2]}
}

// Composite lays the canvas over dst in place.
//
// With glow enabled the canvas is downscaled, blurred and upscaled into a
// bloom layer, and the sharp canvas is added on top with the bloom weighted
// more heavily. Pixels of the result brighter than the mask threshold replace
// the matching pixels of dst; every other pixel of dst is left as it was.
func (s *Surface) Composite(dst *gocv.Mat) error {
	if dst.Rows() != s.height || dst.Cols() != s.width {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrSizeMismatch, dst.Cols(), dst.Rows(), s.width, s.height)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.glow.Enabled {
		gocv.Resize(s.canvas, &s.small, image.Point{}, s.glow.Scale, s.glow.Scale, gocv.InterpolationLinear)
		k := s.glow.Kernel
		gocv.GaussianBlur(s.small, &s.blur, image.Pt(k, k), 0, 0, gocv.BorderDefault)
		gocv.Resize(s.blur, &s.bloom, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationLinear)
		gocv.AddWeighted(s.canvas, s.glow.SharpWeight, s.bloom, s.glow.GlowWeight, 0, &s.final)
	} else {
		s.canvas.CopyTo(&s.final)
	}

	gocv.CvtColor(s.final, &s.gray, gocv.ColorBGRToGray)
	gocv.Threshold(s.gray, &s.mask, float32(s.glow.MaskThreshold), 255, gocv.ThresholdBinary)

	s.final.CopyToWithMask(dst, s.mask)
	return nil
}

// Close releases the canvas and scratch buffers.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range []*gocv.Mat{&s.canvas, &s.small, &s.blur, &s.bloom, &s.final, &s.gray, &s.mask} {
		m.Close()
	}
	return nil
}
