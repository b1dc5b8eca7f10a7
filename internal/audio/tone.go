// Package audio turns the drawing signal into short feedback tones on its
// own goroutine, decoupled from the frame loop.
package audio

import (
	"errors"
	"log"
	"time"
)

// ErrToneUnavailable is returned when the host has no tone facility.
var ErrToneUnavailable = errors.New("tone generator unavailable")

// ToneGenerator plays a tone of freq Hz for d, returning when it finishes.
type ToneGenerator interface {
	Tone(freq int, d time.Duration) error
}

// Silent is the ToneGenerator used when no tone facility exists. It plays
// nothing for d, so the engine keeps its normal pacing.
type Silent struct{}

// Tone waits for d.
func (Silent) Tone(freq int, d time.Duration) error {
	time.Sleep(d)
	return nil
}

// Detect probes the host once and returns the console beeper when it can be
// driven, Silent otherwise.
func Detect() ToneGenerator {
	beeper, err := OpenConsoleBeeper()
	if err != nil {
		log.Printf("Tone generator not available (%v), running silent", err)
		return Silent{}
	}

	log.Printf("Using console tone generator on %s", beeper.Path())
	return beeper
}
