package server

import (
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ayusman/ironcanvas/internal/interaction"
)

type fakeState struct {
	mu     sync.Mutex
	result interaction.Result
}

func (f *fakeState) Last() interaction.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

func (f *fakeState) set(r interaction.Result) {
	f.mu.Lock()
	f.result = r
	f.mu.Unlock()
}

func TestServer_Health(t *testing.T) {
	s := New(Config{Frames: NewFrameHub()})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}
		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
		if response["stream"] != true || response["journal"] != false {
			t.Errorf("component flags = stream:%v journal:%v", response["stream"], response["journal"])
		}
		if response["viewers"] != float64(0) {
			t.Errorf("viewers = %v, want 0", response["viewers"])
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_State(t *testing.T) {
	src := &fakeState{}
	src.set(interaction.Result{
		State:    interaction.Drawing,
		Cursor:   image.Pt(630, 500),
		Active:   true,
		Velocity: 20,
		Hover:    -1,
		Selected: 4,
	})
	s := New(Config{State: src})

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var got struct {
		State    string  `json:"state"`
		Active   bool    `json:"active"`
		Velocity float64 `json:"velocity"`
		Hover    int     `json:"hover"`
		Selected int     `json:"selected"`
		Cursor   struct {
			X int
			Y int
		} `json:"cursor"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if got.State != "drawing" {
		t.Errorf("state = %q, want drawing", got.State)
	}
	if !got.Active || got.Velocity != 20 {
		t.Errorf("audio signal = (%v, %v), want (true, 20)", got.Active, got.Velocity)
	}
	if got.Cursor.X != 630 || got.Cursor.Y != 500 {
		t.Errorf("cursor = (%d,%d), want (630,500)", got.Cursor.X, got.Cursor.Y)
	}
	if got.Hover != -1 || got.Selected != 4 {
		t.Errorf("hover/selected = %d/%d, want -1/4", got.Hover, got.Selected)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/state", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/state: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestServer_DisabledRoutes(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/state", "/stream", "/ws", "/api/sessions", "/api/nonexistent", "/"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("defaults the feed interval", func(t *testing.T) {
		s := New(Config{})
		if s.config.FeedInterval <= 0 {
			t.Errorf("FeedInterval = %v, want positive default", s.config.FeedInterval)
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}

func TestFrameHub(t *testing.T) {
	hub := NewFrameHub()

	if data, seq := hub.Latest(); data != nil || seq != 0 {
		t.Errorf("Latest() on empty hub = (%v, %d)", data, seq)
	}

	hub.PublishJPEG([]byte{1, 2, 3})
	hub.PublishJPEG([]byte{4, 5})

	data, seq := hub.Latest()
	if seq != 2 || len(data) != 2 || data[0] != 4 {
		t.Errorf("Latest() = (%v, %d), want ([4 5], 2)", data, seq)
	}
}
