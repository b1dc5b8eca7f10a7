//go:build !linux

package audio

import "time"

// ConsoleBeeper is only available on Linux.
type ConsoleBeeper struct{}

// OpenConsoleBeeper always fails off Linux.
func OpenConsoleBeeper() (*ConsoleBeeper, error) {
	return nil, ErrToneUnavailable
}

// Path returns an empty string.
func (b *ConsoleBeeper) Path() string { return "" }

// Tone always fails off Linux.
func (b *ConsoleBeeper) Tone(freq int, d time.Duration) error { return ErrToneUnavailable }

// Close is a no-op.
func (b *ConsoleBeeper) Close() error { return nil }
