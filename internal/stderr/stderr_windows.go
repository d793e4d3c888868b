//go:build windows

// Package stderr is a no-op on Windows, whose audio stack does not write
// to fd 2.
package stderr

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Messages is never written on Windows.
var Messages = make(chan string)

// Start is a no-op on Windows.
func Start() error {
	return nil
}

// Forward is a no-op on Windows.
func Forward(zerolog.Logger) {}

// Original returns os.Stderr.
func Original() io.Writer {
	return os.Stderr
}

// Stop is a no-op on Windows.
func Stop() {}
