// Package interaction implements the per-frame gesture state machine: it
// turns one frame's keypoints into a smoothed cursor, a pinch decision, a
// palette selection, canvas strokes and the audio signal.
package interaction

// State is the gesture state for one tick.
type State int

const (
	// NoHand means the detector found no hand this tick.
	NoHand State = iota
	// Idle means a hand is present but neither selecting nor drawing.
	Idle
	// Selecting means the hand pinched over a palette sector.
	Selecting
	// Drawing means the hand pinched below the guard line.
	Drawing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NoHand:
		return "no_hand"
	case Idle:
		return "idle"
	case Selecting:
		return "selecting"
	case Drawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Signals are the inputs the state is derived from.
type Signals struct {
	HandPresent bool
	Pinch       float64
	Hovering    bool
	CursorY     int
}

// Classify derives the state from this tick's signals alone. Selecting wins
// over Drawing when both would apply.
func Classify(s Signals, pinchThreshold float64, guardLine int) State {
	if !s.HandPresent {
		return NoHand
	}

	pinching := s.Pinch < pinchThreshold
	switch {
	case pinching && s.Hovering:
		return Selecting
	case pinching && s.CursorY > guardLine:
		return Drawing
	default:
		return Idle
	}
}
