package audio

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/ironcanvas/internal/config"
)

// recorder is a ToneGenerator that records every request.
type recorder struct {
	mu    sync.Mutex
	freqs []int
	err   error
}

func (r *recorder) Tone(freq int, d time.Duration) error {
	time.Sleep(d)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freqs = append(r.freqs, freq)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.freqs)
}

func (r *recorder) last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.freqs) == 0 {
		return 0
	}
	return r.freqs[len(r.freqs)-1]
}

func testConfig() config.Audio {
	cfg := config.Default().Audio
	cfg.Tone = 5 * time.Millisecond
	cfg.Idle = 10 * time.Millisecond
	return cfg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestEngine_Frequency(t *testing.T) {
	e := NewEngine(config.Default().Audio, nil)

	tests := []struct {
		velocity float64
		want     int
	}{
		{0, 200},
		{20, 300},
		{10.9, 254},
		{200, 800},
		{1000, 800},
	}
	for _, tt := range tests {
		if got := e.Frequency(tt.velocity); got != tt.want {
			t.Errorf("Frequency(%v) = %d, want %d", tt.velocity, got, tt.want)
		}
	}

	low := config.Default().Audio
	low.BaseHz = 50
	if got := NewEngine(low, nil).Frequency(0); got != 100 {
		t.Errorf("Frequency below range = %d, want 100", got)
	}
}

func TestEngine_SetState_LastWriteWins(t *testing.T) {
	e := NewEngine(testConfig(), nil)

	if got := e.State(); got != (Signal{}) {
		t.Errorf("initial State() = %+v, want zero", got)
	}

	e.SetState(true, 12)
	e.SetState(true, 30)
	e.SetState(false, 0)
	e.SetState(true, 7)

	if got := e.State(); got != (Signal{Active: true, Velocity: 7}) {
		t.Errorf("State() = %+v, want {true 7}", got)
	}

	e.SetState(true, -3)
	if got := e.State().Velocity; got != 0 {
		t.Errorf("negative velocity stored as %v, want 0", got)
	}
}

func TestEngine_PlaysWhileActive(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(testConfig(), rec)
	e.Start()
	defer e.Stop()

	time.Sleep(30 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("played %d tones while inactive", rec.count())
	}

	e.SetState(true, 20)
	waitFor(t, func() bool { return rec.count() >= 3 })

	if got := rec.last(); got != 300 {
		t.Errorf("tone frequency = %d, want 300", got)
	}
	if e.Tones() < 3 {
		t.Errorf("Tones() = %d, want >= 3", e.Tones())
	}

	e.SetState(false, 0)
	time.Sleep(20 * time.Millisecond)
	settled := rec.count()
	time.Sleep(40 * time.Millisecond)
	if rec.count() != settled {
		t.Errorf("tones kept playing after going inactive: %d -> %d", settled, rec.count())
	}
}

func TestEngine_Muted(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(testConfig(), rec)
	e.SetMuted(true)
	e.Start()
	defer e.Stop()

	e.SetState(true, 10)
	time.Sleep(40 * time.Millisecond)
	if rec.count() != 0 {
		t.Errorf("muted engine played %d tones", rec.count())
	}

	e.SetMuted(false)
	waitFor(t, func() bool { return rec.count() > 0 })
}

func TestEngine_Stop(t *testing.T) {
	rec := &recorder{}
	e := NewEngine(testConfig(), rec)
	e.Start()

	e.SetState(true, 5)
	waitFor(t, func() bool { return rec.count() > 0 })

	start := time.Now()
	e.Stop()
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("Stop() took %v", elapsed)
	}

	stopped := rec.count()
	e.SetState(true, 50)
	time.Sleep(50 * time.Millisecond)
	if rec.count() != stopped {
		t.Errorf("tones after stop: %d -> %d", stopped, rec.count())
	}

	// A second Stop is harmless.
	e.Stop()
}

func TestEngine_StopWhileIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Idle = 50 * time.Millisecond
	e := NewEngine(cfg, &recorder{})
	e.Start()
	time.Sleep(5 * time.Millisecond)

	start := time.Now()
	e.Stop()
	if elapsed := time.Since(start); elapsed > cfg.Idle+100*time.Millisecond {
		t.Errorf("Stop() while idle took %v, want within one idle interval", elapsed)
	}
}

func TestEngine_StopWithoutStart(t *testing.T) {
	e := NewEngine(testConfig(), nil)

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() without Start() blocked")
	}
}

func TestEngine_SwallowsToneErrors(t *testing.T) {
	rec := &recorder{err: errors.New("device busy")}
	e := NewEngine(testConfig(), rec)
	e.Start()
	defer e.Stop()

	e.SetState(true, 10)
	waitFor(t, func() bool { return rec.count() >= 2 })

	if e.Tones() != 0 {
		t.Errorf("Tones() = %d, want 0 for failed tones", e.Tones())
	}
}

func TestSilent_KeepsPacing(t *testing.T) {
	start := time.Now()
	if err := (Silent{}).Tone(440, 15*time.Millisecond); err != nil {
		t.Fatalf("Tone() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Silent.Tone returned after %v, want >= 15ms", elapsed)
	}
}

func TestDetect_ReturnsGenerator(t *testing.T) {
	gen := Detect()
	if gen == nil {
		t.Fatal("Detect() returned nil")
	}
	if c, ok := gen.(*ConsoleBeeper); ok {
		c.Close()
	}
}
