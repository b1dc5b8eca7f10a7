package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/ayusman/ironcanvas/internal/app"
	"github.com/ayusman/ironcanvas/internal/config"
	"github.com/ayusman/ironcanvas/internal/server"
	"github.com/ayusman/ironcanvas/internal/store"
	"github.com/ayusman/ironcanvas/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ~/.ironcanvas/config.yaml if present)")
	headless := flag.Bool("headless", false, "run without a window")
	journalPath := flag.String("journal", "", "record sessions to this SQLite file")
	previewAddr := flag.String("preview", "", "serve the preview stream and state on this address, e.g. 127.0.0.1:8080")
	withTray := flag.Bool("tray", false, "show a system tray menu")
	videoFile := flag.String("video", "", "replay a video file instead of the camera")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			cfg.Window.Headless = *headless
		case "journal":
			cfg.Journal.Path = *journalPath
		case "preview":
			cfg.Preview.Addr = *previewAddr
		case "tray":
			cfg.Tray = *withTray
		case "video":
			cfg.Camera.File = *videoFile
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Journal.Path != "" {
		st, err = store.New(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		defer st.Close()
	}

	var hub *server.FrameHub
	if cfg.Preview.Addr != "" {
		hub = server.NewFrameHub()
	}

	var tr *tray.Tray
	opts := app.Options{Journal: st, Frames: hub}
	if cfg.Tray {
		tr = tray.New(cfg.Audio.Enabled)
		opts.OnColor = tr.SetColor
	}

	a := app.New(cfg, opts)

	if hub != nil {
		srv := server.New(server.Config{State: a.Engine(), Frames: hub, Store: st})
		go func() {
			if err := srv.Run(ctx, cfg.Preview.Addr); err != nil {
				log.Printf("Preview server failed: %v", err)
			}
		}()
	}

	fmt.Println("IRON CANVAS ACTIVATED")

	if tr == nil {
		if err := a.Run(ctx); err != nil {
			log.Fatalf("Iron Canvas failed: %v", err)
		}
		return
	}

	// The tray owns the main thread; the frame loop keeps its own.
	tr.OnSound(a.SetSound)
	tr.OnClear(a.RequestClear)
	tr.OnQuit(a.RequestQuit)

	done := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		done <- a.Run(ctx)
		tr.Quit()
	}()

	tr.Run()
	a.RequestQuit()
	if err := <-done; err != nil {
		log.Fatalf("Iron Canvas failed: %v", err)
	}
}

// loadConfig reads path, or ~/.ironcanvas/config.yaml when path is empty and
// that file exists, or falls back to the defaults.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return config.Default(), nil
	}

	path = filepath.Join(home, ".ironcanvas", "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}

	log.Printf("Using config %s", path)
	return config.Load(path)
}
