// Package app wires the camera, detector, interaction engine and audio
// feedback into the Iron Canvas frame loop.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/ironcanvas/internal/audio"
	"github.com/ayusman/ironcanvas/internal/canvas"
	"github.com/ayusman/ironcanvas/internal/capture"
	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/detector"
	"github.com/ayusman/ironcanvas/internal/interaction"
	"github.com/ayusman/ironcanvas/internal/palette"
	"github.com/ayusman/ironcanvas/internal/server"
	"github.com/ayusman/ironcanvas/internal/store"
	"golang.org/x/time/rate"
)

// detectErrEvery limits how often detector errors are logged.
const detectErrEvery = time.Second

// Options supplies collaborators. Nil fields are built from the config.
type Options struct {
	Camera   capture.Camera
	Detector detector.Detector
	Tones    audio.ToneGenerator
	Display  Display
	// Journal, when set, records the session. The caller closes it.
	Journal *store.Store
	// Frames, when set, receives every composited frame for the preview stream.
	Frames *server.FrameHub
	// OnColor is called with the entry name whenever a new colour is committed.
	OnColor func(name string)
}

// App is the Iron Canvas frame loop and the resources it owns.
type App struct {
	cfg      config.Config
	camera   capture.Camera
	detector detector.Detector
	display  Display
	palette  *palette.Palette
	surface  *canvas.Surface
	audio    *audio.Engine
	engine   *interaction.Engine
	store    *store.Store
	journal  *journal
	frames   *server.FrameHub
	onColor  func(name string)

	quit     chan struct{}
	quitOnce sync.Once
	stopOnce sync.Once

	detectErrLog *rate.Sometimes
	publishWarn  sync.Once
}

// New builds an App from a validated config.
func New(cfg config.Config, opts Options) *App {
	a := &App{
		cfg:      cfg,
		camera:   opts.Camera,
		detector: opts.Detector,
		display:  opts.Display,
		store:    opts.Journal,
		frames:   opts.Frames,
		onColor:  opts.OnColor,
		quit:     make(chan struct{}),

		detectErrLog: &rate.Sometimes{Interval: detectErrEvery},
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.Camera)
	}
	if a.detector == nil {
		a.detector = detector.Select(cfg.Detector)
	}
	if a.display == nil {
		if cfg.Window.Headless {
			a.display = NewHeadless()
		} else {
			a.display = NewWindow(cfg.Window.Title)
		}
	}

	tones := opts.Tones
	if tones == nil {
		tones = audio.Detect()
	}
	a.audio = audio.NewEngine(cfg.Audio, tones)
	a.audio.SetMuted(!cfg.Audio.Enabled)

	a.palette = palette.New(cfg.Palette)
	a.surface = canvas.New(cfg.Camera.Width, cfg.Camera.Height, cfg.Glow)
	a.engine = interaction.New(cfg, a.palette, a.surface, a.audio)

	return a
}

// Engine returns the interaction engine. Its Last method feeds the preview server.
func (a *App) Engine() *interaction.Engine {
	return a.engine
}

// Audio returns the audio feedback engine.
func (a *App) Audio() *audio.Engine {
	return a.audio
}

// Palette returns the radial palette.
func (a *App) Palette() *palette.Palette {
	return a.palette
}

// Surface returns the drawing surface.
func (a *App) Surface() *canvas.Surface {
	return a.surface
}

// SessionID returns the journaled session ID, or "" when not journaling.
func (a *App) SessionID() string {
	if a.journal == nil {
		return ""
	}
	return a.journal.ID()
}

// RequestQuit asks the frame loop to stop after the current tick.
func (a *App) RequestQuit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// RequestClear wipes the canvas at the start of the next tick.
func (a *App) RequestClear() {
	a.engine.RequestClear()
}

// SetSound turns audio feedback on or off.
func (a *App) SetSound(enabled bool) {
	a.audio.SetMuted(!enabled)
	if enabled {
		log.Println("Sound on")
	} else {
		log.Println("Sound off")
	}
}

// shutdown releases everything in order: audio loop first, then the frame
// source, then the rest. Safe to call more than once.
func (a *App) shutdown() {
	a.stopOnce.Do(func() {
		a.audio.Stop()

		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
		if err := a.display.Close(); err != nil {
			log.Printf("Error closing display: %v", err)
		}
		if err := a.surface.Close(); err != nil {
			log.Printf("Error releasing canvas: %v", err)
		}

		if a.journal != nil {
			if err := a.journal.close(); err != nil {
				log.Printf("Error ending session %s: %v", a.journal.ID(), err)
			}
		}

		log.Println("Iron Canvas stopped")
	})
}
