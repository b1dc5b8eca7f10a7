package detector

import (
	"log"

	"github.com/ayusman/ironcanvas/internal/config"
	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Select returns the MediaPipe detector when its service script can be
// found, and a MockDetector that never sees a hand otherwise.
func Select(cfg config.Detector) Detector {
	mp, err := NewMediaPipeDetector(cfg)
	if err != nil {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		return NewMockDetector()
	}

	log.Println("Using MediaPipe hand detection")
	return mp
}

// Primary returns the first valid hand in pixel coordinates, or nil.
func Primary(hands []HandLandmarks, width, height int) *Keypoints {
	for i := range hands {
		if !hands[i].Valid() {
			continue
		}
		k := hands[i].Pixels(width, height)
		return &k
	}
	return nil
}
