package audio

import (
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/geometry"
)

// Signal is the drawing state published by the frame loop.
type Signal struct {
	Active   bool    `json:"active"`
	Velocity float64 `json:"velocity"`
}

// Engine plays tones while the published signal is active. The signal is a
// single overwrite slot: every SetState replaces the previous one and the
// loop only ever reads the latest.
type Engine struct {
	cfg config.Audio
	gen ToneGenerator

	signal atomic.Pointer[Signal]
	muted  atomic.Bool
	tones  atomic.Int64

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
	warnOnce  sync.Once
}

// NewEngine creates an engine that plays through gen. A nil gen is treated
// as Silent.
func NewEngine(cfg config.Audio, gen ToneGenerator) *Engine {
	if gen == nil {
		gen = Silent{}
	}

	e := &Engine{
		cfg:  cfg,
		gen:  gen,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	e.signal.Store(&Signal{})
	return e
}

// Start launches the tone loop. Calling it more than once has no effect.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		e.started.Store(true)
		go e.loop()
	})
}

// SetState publishes the current drawing state. It never blocks.
func (e *Engine) SetState(active bool, velocity float64) {
	if velocity < 0 {
		velocity = 0
	}
	e.signal.Store(&Signal{Active: active, Velocity: velocity})
}

// State returns the last published signal.
func (e *Engine) State() Signal {
	return *e.signal.Load()
}

// SetMuted silences the engine without stopping it.
func (e *Engine) SetMuted(muted bool) {
	e.muted.Store(muted)
}

// Muted reports whether the engine is muted.
func (e *Engine) Muted() bool {
	return e.muted.Load()
}

// Tones returns the number of tones played so far.
func (e *Engine) Tones() int64 {
	return e.tones.Load()
}

// Frequency maps a cursor velocity in pixels per tick to a tone pitch.
func (e *Engine) Frequency(velocity float64) int {
	freq := int(e.cfg.BaseHz + velocity*e.cfg.HzPerPx)
	return geometry.ClampInt(freq, e.cfg.MinHz, e.cfg.MaxHz)
}

// Stop ends the loop and waits for it to exit. A tone already playing is
// allowed to finish. Safe to call more than once and from any goroutine.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
		if e.started.Load() {
			<-e.done
		}
		if c, ok := e.gen.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Error closing tone generator: %v", err)
			}
		}
	})
}

func (e *Engine) loop() {
	defer close(e.done)

	idle := time.NewTimer(e.cfg.Idle)
	defer idle.Stop()

	for {
		select {
		case <-e.stop:
			return
		default:
		}

		s := e.State()
		if s.Active && !e.Muted() {
			err := e.gen.Tone(e.Frequency(s.Velocity), e.cfg.Tone)
			if err == nil {
				e.tones.Add(1)
				continue
			}
			e.warnOnce.Do(func() {
				log.Printf("Tone failed (%v), continuing", err)
			})
		}

		idle.Reset(e.cfg.Idle)
		select {
		case <-e.stop:
			return
		case <-idle.C:
		}
	}
}
