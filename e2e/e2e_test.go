package e2e

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/ironcanvas/internal/app"
	"github.com/ayusman/ironcanvas/internal/audio"
	"github.com/ayusman/ironcanvas/internal/capture"
	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/detector"
	"github.com/ayusman/ironcanvas/internal/server"
	"github.com/ayusman/ironcanvas/internal/store"
	"gocv.io/x/gocv"
)

type running struct {
	app    *app.App
	det    *detector.MockDetector
	server *httptest.Server
	store  *store.Store
	done   chan struct{}
	err    error
}

// start runs a headless app over a looping blank feed with the preview
// server and journal attached.
func start(t *testing.T) *running {
	t.Helper()

	cfg := config.Default()
	cfg.Camera.Mirror = false
	cfg.Window.Headless = true

	s, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(20, 20, 20, 0), cfg.Camera.Height, cfg.Camera.Width, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	r := &running{
		det:   detector.NewMockDetector(),
		store: s,
		done:  make(chan struct{}),
	}

	hub := server.NewFrameHub()
	r.app = app.New(cfg, app.Options{
		Camera:   capture.NewMockCamera([]*gocv.Mat{&frame}, true),
		Detector: r.det,
		Display:  app.NewHeadless(),
		Tones:    audio.Silent{},
		Journal:  s,
		Frames:   hub,
	})

	r.server = httptest.NewServer(server.New(server.Config{
		State:  r.app.Engine(),
		Frames: hub,
		Store:  s,
	}))
	t.Cleanup(r.server.Close)

	go func() {
		r.err = r.app.Run(context.Background())
		close(r.done)
	}()
	t.Cleanup(r.stop)

	return r
}

// stop quits the app and waits for the shutdown sequence.
func (r *running) stop() {
	r.app.RequestQuit()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
	}
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func getJSON(t *testing.T, client *http.Client, url string, v any) int {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		json.NewDecoder(resp.Body).Decode(v)
	}
	return resp.StatusCode
}

func TestE2E_DrawAndPreview(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	r := start(t)
	client := r.server.Client()

	r.det.SetHands([]detector.HandLandmarks{detector.PinchLandmarks(0.5, 0.5, 10.0/1280)})

	t.Run("StateReportsDrawing", func(t *testing.T) {
		eventually(t, "drawing state", func() bool {
			var state struct {
				State  string `json:"state"`
				Active bool   `json:"active"`
			}
			getJSON(t, client, r.server.URL+"/api/state", &state)
			return state.State == "drawing" && state.Active
		})
	})

	t.Run("StreamServesJPEG", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, r.server.URL+"/stream", nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("GET /stream error = %v", err)
		}
		defer resp.Body.Close()

		body := readPart(t, bufio.NewReader(resp.Body))
		if len(body) < 2 || body[0] != 0xFF || body[1] != 0xD8 {
			t.Errorf("stream part is not a JPEG (%d bytes)", len(body))
		}
	})

	t.Run("HealthShowsComponents", func(t *testing.T) {
		var health map[string]any
		if code := getJSON(t, client, r.server.URL+"/api/health", &health); code != http.StatusOK {
			t.Fatalf("status = %d, want %d", code, http.StatusOK)
		}
		for _, k := range []string{"state", "stream", "journal"} {
			if health[k] != true {
				t.Errorf("health[%q] = %v, want true", k, health[k])
			}
		}
	})

	t.Run("SelectColour", func(t *testing.T) {
		// (755,136) sits over the yellow sector.
		r.det.SetHands([]detector.HandLandmarks{detector.PinchLandmarks(755.0/1280, 0.19, 10.0/1280)})

		eventually(t, "yellow selection", func() bool {
			var state struct {
				State    string `json:"state"`
				Selected int    `json:"selected"`
			}
			getJSON(t, client, r.server.URL+"/api/state", &state)
			return state.State == "selecting" && state.Selected == 2
		})
	})

	t.Run("JournalAfterQuit", func(t *testing.T) {
		r.stop()
		if r.err != nil {
			t.Fatalf("Run() error = %v", r.err)
		}

		var listed struct {
			Sessions []struct {
				ID      string `json:"id"`
				EndedAt string `json:"ended_at"`
				Frames  int64  `json:"frames"`
				Strokes int64  `json:"strokes"`
			} `json:"sessions"`
		}
		getJSON(t, client, r.server.URL+"/api/sessions", &listed)

		if len(listed.Sessions) != 1 {
			t.Fatalf("sessions = %d, want 1", len(listed.Sessions))
		}
		sess := listed.Sessions[0]
		if sess.ID != r.app.SessionID() {
			t.Errorf("session ID = %s, want %s", sess.ID, r.app.SessionID())
		}
		if sess.EndedAt == "" {
			t.Error("session should be ended after quit")
		}
		if sess.Frames == 0 || sess.Strokes == 0 {
			t.Errorf("totals = frames %d strokes %d, want both > 0", sess.Frames, sess.Strokes)
		}

		var events struct {
			Events []struct {
				Kind   string `json:"kind"`
				Detail string `json:"detail"`
			} `json:"events"`
		}
		getJSON(t, client, r.server.URL+"/api/sessions/"+sess.ID+"/events", &events)
		if len(events.Events) != 1 || events.Events[0].Kind != "select" || events.Events[0].Detail != "YELLOW" {
			t.Errorf("events = %+v, want one YELLOW select", events.Events)
		}
	})
}

// readPart reads one MJPEG part and returns its body.
func readPart(t *testing.T, r *bufio.Reader) []byte {
	t.Helper()

	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading part header: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" && length >= 0 {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, _ = strconv.Atoi(v)
		}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("reading part body: %v", err)
	}
	return body
}
