package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// FrameHub holds the latest composited frame as JPEG for MJPEG viewers.
// The frame loop publishes; each viewer waits for a newer sequence number.
type FrameHub struct {
	mu      sync.Mutex
	jpeg    []byte
	seq     uint64
	changed chan struct{}

	viewers atomic.Int32
}

// NewFrameHub returns an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{changed: make(chan struct{})}
}

// Viewers returns the number of connected stream clients.
func (h *FrameHub) Viewers() int {
	return int(h.viewers.Load())
}

// Publish encodes frame as JPEG when anyone is watching. With no viewers it
// does nothing, keeping encode cost off the frame loop.
func (h *FrameHub) Publish(frame gocv.Mat) error {
	if h.Viewers() == 0 || frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncode(".jpg", frame)
	if err != nil {
		return fmt.Errorf("encode preview frame: %w", err)
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	h.PublishJPEG(data)
	return nil
}

// PublishJPEG stores an already encoded frame and wakes waiting viewers.
func (h *FrameHub) PublishJPEG(data []byte) {
	h.mu.Lock()
	h.jpeg = data
	h.seq++
	close(h.changed)
	h.changed = make(chan struct{})
	h.mu.Unlock()
}

// Latest returns the current frame and its sequence number (0 if none yet).
func (h *FrameHub) Latest() ([]byte, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jpeg, h.seq
}

// next blocks until a frame newer than after is available or ctx ends.
func (h *FrameHub) next(ctx context.Context, after uint64) ([]byte, uint64, bool) {
	for {
		h.mu.Lock()
		data, seq, changed := h.jpeg, h.seq, h.changed
		h.mu.Unlock()

		if seq > after {
			return data, seq, true
		}

		select {
		case <-ctx.Done():
			return nil, after, false
		case <-changed:
		}
	}
}

// StreamHandler serves the hub's frames as MJPEG.
type StreamHandler struct {
	hub *FrameHub
}

// NewStreamHandler creates a new StreamHandler reading from hub.
func NewStreamHandler(hub *FrameHub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// ServeHTTP streams MJPEG frames to the client until it disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	h.hub.viewers.Add(1)
	defer h.hub.viewers.Add(-1)

	var seq uint64
	for {
		data, next, ok := h.hub.next(r.Context(), seq)
		if !ok {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		if _, err := w.Write(data); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
