//go:build linux

package audio

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// PC speaker control from linux/kd.h.
const (
	kiocSound = 0x4B2F // KIOCSOUND ioctl
	pitClock  = 1193180
)

var consolePaths = []string{"/dev/tty0", "/dev/console", "/dev/tty"}

// ConsoleBeeper drives the PC speaker through the Linux console.
type ConsoleBeeper struct {
	mu   sync.Mutex
	fd   int
	path string
}

// OpenConsoleBeeper opens the first console that accepts KIOCSOUND.
func OpenConsoleBeeper() (*ConsoleBeeper, error) {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_WRONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		// Silence is a harmless probe.
		if err := unix.IoctlSetInt(fd, kiocSound, 0); err != nil {
			unix.Close(fd)
			lastErr = fmt.Errorf("KIOCSOUND on %s: %w", p, err)
			continue
		}
		return &ConsoleBeeper{fd: fd, path: p}, nil
	}
	if lastErr == nil {
		lastErr = ErrToneUnavailable
	}
	return nil, fmt.Errorf("%w: %v", ErrToneUnavailable, lastErr)
}

// Path returns the console device in use.
func (b *ConsoleBeeper) Path() string {
	return b.path
}

// Tone starts the speaker at freq, waits d, then silences it.
func (b *ConsoleBeeper) Tone(freq int, d time.Duration) error {
	if freq <= 0 {
		return fmt.Errorf("invalid frequency %d", freq)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := unix.IoctlSetInt(b.fd, kiocSound, pitClock/freq); err != nil {
		return fmt.Errorf("start tone: %w", err)
	}
	time.Sleep(d)
	if err := unix.IoctlSetInt(b.fd, kiocSound, 0); err != nil {
		return fmt.Errorf("stop tone: %w", err)
	}
	return nil
}

// Close silences the speaker and closes the console.
func (b *ConsoleBeeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	unix.IoctlSetInt(b.fd, kiocSound, 0)
	return unix.Close(b.fd)
}
