package logging

import (
	"io"
	"os"
	"sync"
)

// swappableWriter forwards writes to a target that can be replaced while
// loggers hold on to it.
type swappableWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *swappableWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *swappableWriter) swap(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

var stderrSink = &swappableWriter{w: os.Stderr}

// SetGlobalOutput redirects the stderr side of every component logger,
// including loggers created before the call. Tests point it at a buffer to
// capture structured entries; the release command leaves it on stderr.
func SetGlobalOutput(w io.Writer) {
	stderrSink.swap(w)
}

// GetGlobalOutput returns the writer component loggers use in place of
// os.Stderr.
func GetGlobalOutput() io.Writer {
	return stderrSink
}
