package interaction

import "testing"

func TestClassify(t *testing.T) {
	const threshold, guard = 40.0, 200

	tests := []struct {
		name string
		in   Signals
		want State
	}{
		{"no hand", Signals{HandPresent: false, Pinch: 5, Hovering: true, CursorY: 500}, NoHand},
		{"open hand below guard", Signals{HandPresent: true, Pinch: 80, CursorY: 500}, Idle},
		{"open hand over palette", Signals{HandPresent: true, Pinch: 80, Hovering: true, CursorY: 100}, Idle},
		{"pinch below guard", Signals{HandPresent: true, Pinch: 10, CursorY: 500}, Drawing},
		{"pinch on guard line", Signals{HandPresent: true, Pinch: 10, CursorY: 200}, Idle},
		{"pinch above guard off palette", Signals{HandPresent: true, Pinch: 10, CursorY: 150}, Idle},
		{"pinch over palette", Signals{HandPresent: true, Pinch: 10, Hovering: true, CursorY: 100}, Selecting},
		{"selecting beats drawing", Signals{HandPresent: true, Pinch: 10, Hovering: true, CursorY: 500}, Selecting},
		{"pinch exactly at threshold", Signals{HandPresent: true, Pinch: 40, CursorY: 500}, Idle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in, threshold, guard); got != tt.want {
				t.Errorf("Classify(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		NoHand:    "no_hand",
		Idle:      "idle",
		Selecting: "selecting",
		Drawing:   "drawing",
		State(42): "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestPinchFill(t *testing.T) {
	tests := []struct {
		pinch, want float64
	}{
		{150, 0},
		{100, 0},
		{70, 0.5},
		{40, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := PinchFill(tt.pinch); got != tt.want {
			t.Errorf("PinchFill(%v) = %v, want %v", tt.pinch, got, tt.want)
		}
	}
}
