package interaction

import (
	"image"
	"image/color"

	"github.com/ayusman/ironcanvas/internal/detector"
	"github.com/ayusman/ironcanvas/internal/geometry"
	"gocv.io/x/gocv"
)

// HUD colours.
var (
	skeletonColor = color.RGBA{R: 255, G: 255, A: 255}
	jointFill     = color.RGBA{R: 255, G: 165, A: 255}
	targetColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	barTrack      = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	barIdle       = color.RGBA{R: 255, A: 255}
	barArmed      = color.RGBA{G: 255, A: 255}
)

// Pinch bar layout relative to the index fingertip.
const (
	barOffsetX   = 15
	barLength    = 40
	barHeight    = 6
	labelOffsetX = 20
	labelOffsetY = -10
	targetRadius = 10

	// The bar is empty at fillFar pixels of pinch and full at fillFar-fillSpan.
	fillFar  = 100.0
	fillSpan = 60.0
)

// PinchFill is the fraction of the pinch bar to fill for a pinch distance.
func PinchFill(pinch float64) float64 {
	return geometry.Clamp01((fillFar - pinch) / fillSpan)
}

// drawHUD renders the hand overlay onto frame and blends it in at weight.
func drawHUD(frame *gocv.Mat, k *detector.Keypoints, pinch, threshold, weight float64) {
	overlay := frame.Clone()
	defer overlay.Close()

	for _, c := range detector.Connections {
		gocv.Line(&overlay, k[c[0]], k[c[1]], skeletonColor, 1)
	}

	for _, pt := range k {
		gocv.Circle(&overlay, pt, 3, jointFill, -1)
		gocv.Circle(&overlay, pt, 6, skeletonColor, 1)
	}

	tip := k.IndexTip()
	gocv.Circle(&overlay, tip, targetRadius, targetColor, 1)

	bar := barIdle
	if pinch < threshold {
		bar = barArmed
		gocv.PutText(&overlay, "ON", image.Pt(tip.X+labelOffsetX, tip.Y+labelOffsetY), gocv.FontHersheyPlain, 1, bar, 2)
	}

	origin := image.Pt(tip.X+barOffsetX, tip.Y)
	gocv.Rectangle(&overlay, image.Rect(origin.X, origin.Y, origin.X+barLength, origin.Y+barHeight), barTrack, -1)
	filled := int(barLength * PinchFill(pinch))
	gocv.Rectangle(&overlay, image.Rect(origin.X, origin.Y, origin.X+filled, origin.Y+barHeight), bar, -1)

	gocv.AddWeighted(overlay, weight, *frame, 1-weight, 0, frame)
}
