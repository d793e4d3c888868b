//go:build !windows

// Package stderr captures output from C libraries (ALSA, decoders) that
// write directly to file descriptor 2, bypassing Go's os.Stderr, and hands
// the lines to the application logger.
package stderr

import (
	"bufio"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
)

// Messages receives captured stderr lines. Start replaces it; it is closed
// once Stop has restored fd 2 and the pipe is drained.
var Messages = make(chan string, 100)

var (
	origStderr = -1
	pipeWrite  *os.File
	started    bool
)

// Start begins capturing fd 2. Call it before the audio output is opened.
// On error the program can continue uncaptured.
func Start() error {
	if started {
		return nil
	}

	r, w, err := os.Pipe()
	if err != nil {
		return err
	}

	origStderr, err = syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(origStderr)
		origStderr = -1
		r.Close()
		w.Close()
		return err
	}

	pipeWrite = w
	started = true

	ch := make(chan string, 100)
	Messages = ch
	go func() {
		defer close(ch)
		defer r.Close()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				select {
				case ch <- line:
				default:
					// full, drop
				}
			}
		}
	}()

	return nil
}

// Forward logs every captured line at warn until Messages is closed.
func Forward(log zerolog.Logger) {
	ch := Messages
	go func() {
		for line := range ch {
			log.Warn().Str("source", "stderr").Msg(line)
		}
	}()
}

type originalWriter struct{}

func (originalWriter) Write(p []byte) (int, error) {
	if origStderr < 0 {
		return os.Stderr.Write(p)
	}
	return syscall.Write(origStderr, p)
}

// Original returns a writer to the real stderr. Loggers must use it while
// capture is active or their output would loop back into Messages.
func Original() io.Writer {
	return originalWriter{}
}

// Stop restores the original stderr. The reader drains what is left in
// the pipe and then closes Messages.
func Stop() {
	if !started {
		return
	}

	_ = syscall.Dup2(origStderr, int(os.Stderr.Fd()))
	_ = syscall.Close(origStderr)
	origStderr = -1

	pipeWrite.Close()
	pipeWrite = nil
	started = false
}
