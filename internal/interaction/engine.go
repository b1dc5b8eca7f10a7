package interaction

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/ayusman/ironcanvas/internal/canvas"
	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/detector"
	"github.com/ayusman/ironcanvas/internal/geometry"
	"github.com/ayusman/ironcanvas/internal/palette"
	"gocv.io/x/gocv"
)

// Sink receives the audio signal once per tick. It must not block.
type Sink interface {
	SetState(active bool, velocity float64)
}

// Cursor is the only per-hand memory kept between ticks.
type Cursor struct {
	// Smooth is the cursor position computed on the last tick with a hand.
	Smooth image.Point `json:"smooth"`
	// PrevRaw is the raw index tip of the last tick with a hand. It is the
	// base the next tick smooths from.
	PrevRaw image.Point `json:"prev_raw"`
	// Initialized is false until the first hand is seen.
	Initialized bool `json:"initialized"`
}

// Result describes what one tick did.
type Result struct {
	State    State       `json:"state"`
	Cursor   image.Point `json:"cursor"`
	Raw      image.Point `json:"raw"`
	Pinch    float64     `json:"pinch"`
	Hover    int         `json:"hover"`
	Hovering bool        `json:"hovering"`
	Active   bool        `json:"active"`
	Velocity float64     `json:"velocity"`
	Color    color.RGBA  `json:"color"`
	Selected int         `json:"selected"`
	Cleared  bool        `json:"cleared"`
}

// Engine runs the gesture state machine. Tick must be called from a single
// goroutine; RequestClear, Cursor, Color and Last are safe from any.
type Engine struct {
	cfg     config.Config
	palette *palette.Palette
	surface *canvas.Surface
	sink    Sink

	clearReq atomic.Bool

	mu     sync.RWMutex
	cursor Cursor
	color  color.RGBA
	last   Result
}

// New wires an engine to its palette, surface and audio sink. The active
// colour starts as the palette's selected entry.
func New(cfg config.Config, p *palette.Palette, s *canvas.Surface, sink Sink) *Engine {
	return &Engine{
		cfg:     cfg,
		palette: p,
		surface: s,
		sink:    sink,
		color:   p.SelectedEntry().Color,
		last:    Result{State: NoHand, Hover: -1, Selected: p.Selected()},
	}
}

// RequestClear asks for the canvas to be cleared at the start of the next tick.
func (e *Engine) RequestClear() {
	e.clearReq.Store(true)
}

// Cursor returns the cursor memory.
func (e *Engine) Cursor() Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}

// Color returns the active drawing colour.
func (e *Engine) Color() color.RGBA {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.color
}

// Last returns the result of the most recent tick.
func (e *Engine) Last() Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Tick processes one frame. k is nil when no hand was detected. The HUD,
// palette and canvas are drawn onto frame in place.
func (e *Engine) Tick(frame *gocv.Mat, k *detector.Keypoints) (Result, error) {
	res := Result{Hover: -1}

	if e.clearReq.Swap(false) {
		e.surface.Clear()
		res.Cleared = true
	}

	if k == nil {
		res.State = NoHand
		e.palette.Render(frame, -1, false)
	} else {
		e.handle(frame, k, &res)
	}

	e.publish(&res)

	if err := e.surface.Composite(frame); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) handle(frame *gocv.Mat, k *detector.Keypoints, res *Result) {
	g := e.cfg.Gesture
	raw := k.IndexTip()

	e.mu.Lock()
	cur := e.cursor
	col := e.color
	e.mu.Unlock()

	base := cur.PrevRaw
	if !cur.Initialized {
		base = raw
	}
	smooth := geometry.Smooth(base, raw, g.Smoothing)
	pinch := geometry.PinchDistance(raw, k.ThumbTip())

	drawHUD(frame, k, pinch, g.PinchThreshold, e.cfg.HUD.OverlayWeight)

	hover, hovering := e.palette.HoverSector(smooth)
	e.palette.Render(frame, hover, hovering)

	res.State = Classify(Signals{
		HandPresent: true,
		Pinch:       pinch,
		Hovering:    hovering,
		CursorY:     smooth.Y,
	}, g.PinchThreshold, g.GuardLine)

	switch res.State {
	case Selecting:
		if c, clear := e.palette.Commit(hover); clear {
			e.surface.Clear()
			res.Cleared = true
		} else {
			col = c
		}
	case Drawing:
		e.surface.Stroke(smooth, raw, col, e.cfg.Brush.Size)
		res.Active = true
		res.Velocity = geometry.Distance(smooth, raw)
	}

	res.Cursor = smooth
	res.Raw = raw
	res.Pinch = pinch
	res.Hover = hover
	res.Hovering = hovering

	e.mu.Lock()
	e.cursor = Cursor{Smooth: smooth, PrevRaw: raw, Initialized: true}
	e.color = col
	e.mu.Unlock()
}

func (e *Engine) publish(res *Result) {
	if e.sink != nil {
		e.sink.SetState(res.Active, res.Velocity)
	}

	e.mu.Lock()
	res.Color = e.color
	res.Selected = e.palette.Selected()
	if res.State == NoHand {
		res.Cursor = e.cursor.Smooth
		res.Raw = e.cursor.PrevRaw
	}
	e.last = *res
	e.mu.Unlock()
}
