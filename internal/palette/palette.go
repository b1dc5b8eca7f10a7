// Package palette implements the radial colour picker drawn along a
// half-circle at the top of the frame.
package palette

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/geometry"
	"gocv.io/x/gocv"
)

// ClearName is the name of the entry that clears the canvas instead of
// selecting a colour.
const ClearName = "CLEAR"

// ArcDegrees is the angular span of the palette.
const ArcDegrees = 180.0

// Entry is one palette slot.
type Entry struct {
	Name  string
	Color color.RGBA
}

// IsClear reports whether selecting the entry clears the canvas.
func (e Entry) IsClear() bool {
	return e.Name == ClearName
}

// DefaultEntries returns the eight entries in arc order, starting at 0°.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "RED", Color: color.RGBA{R: 255, A: 255}},
		{Name: "ORANGE", Color: color.RGBA{R: 255, G: 165, A: 255}},
		{Name: "YELLOW", Color: color.RGBA{R: 255, G: 255, A: 255}},
		{Name: "GREEN", Color: color.RGBA{G: 255, A: 255}},
		{Name: "CYAN", Color: color.RGBA{G: 255, B: 255, A: 255}},
		{Name: "PURPLE", Color: color.RGBA{R: 255, B: 255, A: 255}},
		{Name: "WHITE", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{Name: ClearName, Color: color.RGBA{A: 255}},
	}
}

// Highlight is the colour of the selection halo.
var Highlight = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// Label layout relative to the arc center.
const (
	labelOffsetX   = -40
	labelOffsetY   = 100
	labelFontScale = 1.0
	labelThickness = 2
)

// Palette tracks the entries, the arc geometry and the current selection.
// It is safe for concurrent use; the tick loop is the only writer.
type Palette struct {
	cfg         config.Palette
	entries     []Entry
	center      image.Point
	sectorAngle float64

	mu       sync.RWMutex
	selected int
}

// New creates a Palette with the default entries.
func New(cfg config.Palette) *Palette {
	entries := DefaultEntries()
	return &Palette{
		cfg:         cfg,
		entries:     entries,
		center:      image.Pt(cfg.CenterX, cfg.CenterY),
		sectorAngle: ArcDegrees / float64(len(entries)),
		selected:    cfg.Default,
	}
}

// Entries returns a copy of the entries in arc order.
func (p *Palette) Entries() []Entry {
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Entry returns the entry at index i.
func (p *Palette) Entry(i int) Entry {
	return p.entries[i]
}

// Len returns the number of entries.
func (p *Palette) Len() int {
	return len(p.entries)
}

// Center returns the arc center.
func (p *Palette) Center() image.Point {
	return p.center
}

// SectorAngle returns the span of one sector in degrees.
func (p *Palette) SectorAngle() float64 {
	return p.sectorAngle
}

// Selected returns the index of the selected entry.
func (p *Palette) Selected() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// SelectedEntry returns the selected entry.
func (p *Palette) SelectedEntry() Entry {
	return p.entries[p.Selected()]
}

// HoverSector returns the sector under pt. ok is false when pt lies outside
// the annulus between Radius and Radius+Thickness, or outside the half-circle.
func (p *Palette) HoverSector(pt image.Point) (index int, ok bool) {
	dist := geometry.Distance(p.center, pt)
	inner := float64(p.cfg.Radius)
	outer := float64(p.cfg.Radius + p.cfg.Thickness)
	if dist <= inner || dist >= outer {
		return -1, false
	}

	angle := geometry.AngleDegrees(p.center, pt)
	if angle > ArcDegrees {
		return -1, false
	}

	// 180° exactly lies on the far edge of the last sector.
	index = int(math.Floor(angle / p.sectorAngle))
	if index >= len(p.entries) {
		index = len(p.entries) - 1
	}
	return index, true
}

// Commit applies a pinch on sector i. For the clear entry the selection is
// left alone and clear is true; the caller resets the canvas. For a colour
// entry the selection moves to i and its colour is returned.
func (p *Palette) Commit(i int) (c color.RGBA, clear bool) {
	e := p.entries[i]
	if e.IsClear() {
		return color.RGBA{}, true
	}

	p.mu.Lock()
	p.selected = i
	p.mu.Unlock()

	return e.Color, false
}

// Render draws the arc onto img. hover is ignored unless hovering is true.
//
// Per sector, the selection halo is drawn first, then the hover label, then
// the colour band, so the band is never covered by the halo.
func (p *Palette) Render(img *gocv.Mat, hover int, hovering bool) {
	selected := p.Selected()

	for i, e := range p.entries {
		start := float64(i) * p.sectorAngle
		end := float64(i+1) * p.sectorAngle

		thickness := p.cfg.Thickness
		shift := 0

		if i == selected {
			shift = p.cfg.SelectShift
			r := p.cfg.Radius + shift
			gocv.Ellipse(img, p.center, image.Pt(r, r), 0, start, end, Highlight, -1)
		}

		if hovering && i == hover {
			thickness += p.cfg.HoverBoost
			org := image.Pt(p.center.X+labelOffsetX, p.center.Y+p.cfg.Radius+labelOffsetY)
			gocv.PutText(img, e.Name, org, gocv.FontHersheySimplex, labelFontScale, e.Color, labelThickness)
		}

		r := p.cfg.Radius + shift + thickness/2
		gocv.Ellipse(img, p.center, image.Pt(r, r), 0, start, end, e.Color, thickness)
	}
}
