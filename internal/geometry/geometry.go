// Package geometry provides the pixel-space helpers shared by the palette,
// the drawing surface, and the gesture state machine.
package geometry

import (
	"image"
	"math"
)

// Smooth blends raw into prev by factor, per axis, and truncates the result
// to integer pixel coordinates. factor is expected in (0,1]: 1 returns raw,
// smaller values lag further behind it.
//
// The blend is computed as prev + (raw-prev)*factor, which equals
// prev*(1-factor) + raw*factor but always lands on the segment [prev, raw].
func Smooth(prev, raw image.Point, factor float64) image.Point {
	return image.Point{
		X: blend(prev.X, raw.X, factor),
		Y: blend(prev.Y, raw.Y, factor),
	}
}

func blend(prev, raw int, factor float64) int {
	return int(float64(prev) + float64(raw-prev)*factor)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// PinchDistance is the distance between the index and thumb fingertips.
func PinchDistance(indexTip, thumbTip image.Point) float64 {
	return Distance(indexTip, thumbTip)
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ClampInt limits v to [lo,hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AngleDegrees returns the angle of p around center in image coordinates
// (y grows downward), normalized to [0,360).
func AngleDegrees(center, p image.Point) float64 {
	deg := math.Atan2(float64(p.Y-center.Y), float64(p.X-center.X)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}
