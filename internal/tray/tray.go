// Package tray provides the optional system tray menu for Iron Canvas.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu: sound toggle, clear canvas, quit.
type Tray struct {
	onSound func(enabled bool)
	onClear func()
	onQuit  func()
	sound   bool
	mu      sync.RWMutex

	// Menu items stored for later updates
	menuSound *systray.MenuItem
	menuColor *systray.MenuItem
}

// New creates a new Tray with the sound toggle in the given state.
func New(soundEnabled bool) *Tray {
	return &Tray{
		sound: soundEnabled,
	}
}

// OnSound sets the callback invoked when the sound toggle changes.
func (t *Tray) OnSound(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSound = fn
}

// OnClear sets the callback invoked when "Clear canvas" is clicked.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnQuit sets the callback invoked when "Quit" is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is called and must run
// on the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit tears the tray down, unblocking Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Iron Canvas")
	systray.SetTooltip("Iron Canvas gesture drawing")

	t.mu.Lock()
	t.menuSound = systray.AddMenuItem(soundTitle(t.sound), "Toggle audio feedback")
	t.menuColor = systray.AddMenuItem("Colour: -", "Active drawing colour")
	t.menuColor.Disable()
	menuSound := t.menuSound
	t.mu.Unlock()
	systray.AddSeparator()

	menuClear := systray.AddMenuItem("Clear canvas", "Wipe the drawing")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Iron Canvas")

	go func() {
		for {
			select {
			case <-menuSound.ClickedCh:
				t.handleSound()
			case <-menuClear.ClickedCh:
				t.handleClear()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func soundTitle(enabled bool) string {
	if enabled {
		return "● Sound: on"
	}
	return "○ Sound: off"
}

// handleSound flips the sound state and notifies the callback outside the lock.
func (t *Tray) handleSound() {
	t.mu.Lock()
	t.sound = !t.sound
	enabled := t.sound
	if t.menuSound != nil {
		t.menuSound.SetTitle(soundTitle(enabled))
	}
	callback := t.onSound
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleClear() {
	t.mu.RLock()
	callback := t.onClear
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetColor shows the active colour name in the menu.
func (t *Tray) SetColor(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuColor != nil {
		t.menuColor.SetTitle("Colour: " + name)
	}
}

// SoundEnabled returns the current sound toggle state.
func (t *Tray) SoundEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sound
}
