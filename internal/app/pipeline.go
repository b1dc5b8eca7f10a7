package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/ironcanvas/internal/capture"
	"github.com/ayusman/ironcanvas/internal/detector"
	"github.com/ayusman/ironcanvas/internal/interaction"
	"gocv.io/x/gocv"
)

// errQuit ends the loop on the quit key.
var errQuit = errors.New("quit requested")

// Run opens the camera and processes frames until the source fails or runs
// out, the quit key is pressed, RequestQuit is called or ctx is cancelled.
// The shutdown sequence always runs. End of stream and quitting return nil.
//
// Per tick:
//  1. read a frame; any failure ends the loop
//  2. mirror and resize it to the configured size
//  3. detect hands; errors count as no hand
//  4. tick the interaction engine, which draws HUD, palette and canvas
//  5. journal the result, publish to the preview stream, show it
//  6. handle the quit and clear keys
func (a *App) Run(ctx context.Context) error {
	defer a.shutdown()

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	if a.store != nil {
		j, err := newJournal(a.store, a.palette, a.cfg.Camera.Width, a.cfg.Camera.Height)
		if err != nil {
			log.Printf("Session journal unavailable: %v", err)
		} else {
			a.journal = j
		}
	}

	a.audio.Start()
	log.Println("Frame loop started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.quit:
			return nil
		default:
		}

		err := a.step()
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return nil
		case errors.Is(err, capture.ErrEndOfStream):
			log.Println("Frame source exhausted")
			return nil
		default:
			return err
		}
	}
}

// step runs one tick.
func (a *App) step() error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	w, h := a.cfg.Camera.Width, a.cfg.Camera.Height
	capture.Normalize(frame, w, h, a.cfg.Camera.Mirror)

	k := a.detect(frame, w, h)

	prevColor := a.engine.Color()
	res, err := a.engine.Tick(frame, k)
	if err != nil {
		return fmt.Errorf("tick: %w", err)
	}

	a.observe(res, k != nil, prevColor != res.Color)

	if a.frames != nil {
		if err := a.frames.Publish(*frame); err != nil {
			a.publishWarn.Do(func() {
				log.Printf("Preview stream disabled: %v", err)
			})
		}
	}

	a.display.Show(*frame)
	return a.handleKey(a.display.Key())
}

// detect returns the primary hand in pixels, or nil. Detector errors are
// logged at most once per detectErrEvery.
func (a *App) detect(frame *gocv.Mat, w, h int) *detector.Keypoints {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.detectErrLog.Do(func() {
			log.Printf("Error detecting hands: %v", err)
		})
		return nil
	}
	return detector.Primary(hands, w, h)
}

func (a *App) observe(res interaction.Result, hand, colorChanged bool) {
	if a.journal != nil {
		a.journal.record(res, hand)
	}
	if colorChanged && a.onColor != nil {
		a.onColor(a.palette.Entry(res.Selected).Name)
	}
}

func (a *App) handleKey(key int) error {
	if key == NoKey {
		return nil
	}

	win := a.cfg.Window
	switch {
	case key == int(win.QuitKey[0]):
		log.Println("Quit key pressed")
		return errQuit
	case win.ClearKey != "" && key == int(win.ClearKey[0]):
		a.engine.RequestClear()
	}
	return nil
}
