// Package capture provides the camera frame source using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ayusman/ironcanvas/internal/config"
	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEndOfStream is returned when the source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
	// ErrEmptyFrame is returned when the device hands back an empty image.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	cfg     config.Camera
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	fps     int
}

// NewCamera creates a Camera for the configured device. It is not opened.
func NewCamera(cfg config.Camera) Camera {
	return &cameraImpl{
		cfg: cfg,
		fps: cfg.FPS,
	}
}

// Source describes what Open will read from.
func (c *cameraImpl) Source() string {
	if c.cfg.File != "" {
		return c.cfg.File
	}
	return fmt.Sprintf("camera %d", c.cfg.Device)
}

// Open opens the device (or video file) and requests the configured
// resolution and rate. Devices may not honour them; see Normalize.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if c.cfg.File != "" {
		capture, err = gocv.VideoCaptureFile(c.cfg.File)
	} else {
		capture, err = gocv.OpenVideoCapture(c.cfg.Device)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", c.Source(), err)
	}

	if c.cfg.File == "" {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
		if c.fps > 0 {
			capture.Set(gocv.VideoCaptureFPS, float64(c.fps))
		}
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, ErrEndOfStream
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// SetFPS sets the frames per second for capture.
// Values less than or equal to 0 are ignored.
func (c *cameraImpl) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps

	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current frames per second setting.
func (c *cameraImpl) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fps
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Normalize mirrors frame when asked and resizes it in place to
// width x height if the device delivered another size.
func Normalize(frame *gocv.Mat, width, height int, mirror bool) {
	if mirror {
		gocv.Flip(*frame, frame, 1)
	}
	if frame.Cols() != width || frame.Rows() != height {
		gocv.Resize(*frame, frame, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	}
}
