package app

import (
	"gocv.io/x/gocv"
)

// NoKey is returned by Display.Key when nothing was pressed.
const NoKey = -1

// Display shows composited frames and reports key presses.
type Display interface {
	Show(frame gocv.Mat)
	// Key returns the key pressed since the last call, or NoKey.
	Key() int
	Close() error
}

// windowDisplay is an OpenCV HighGUI window. The window is created on the
// first Show so that every HighGUI call happens on the frame loop's thread.
type windowDisplay struct {
	title string
	win   *gocv.Window
}

// NewWindow returns a HighGUI display with the given title.
func NewWindow(title string) Display {
	return &windowDisplay{title: title}
}

func (d *windowDisplay) Show(frame gocv.Mat) {
	if d.win == nil {
		d.win = gocv.NewWindow(d.title)
	}
	d.win.IMShow(frame)
}

// Key pumps the HighGUI event loop for 1ms, which IMShow needs to repaint.
func (d *windowDisplay) Key() int {
	if d.win == nil {
		return NoKey
	}
	k := d.win.WaitKey(1)
	if k < 0 {
		return NoKey
	}
	return k & 0xFF
}

func (d *windowDisplay) Close() error {
	if d.win == nil {
		return nil
	}
	return d.win.Close()
}

// headlessDisplay discards frames. Used with -headless and the preview server.
type headlessDisplay struct{}

// NewHeadless returns a Display that shows nothing and never reports a key.
func NewHeadless() Display {
	return headlessDisplay{}
}

func (headlessDisplay) Show(gocv.Mat) {}
func (headlessDisplay) Key() int      { return NoKey }
func (headlessDisplay) Close() error  { return nil }
