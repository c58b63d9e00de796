// Package transporters contains log.Transporter implementations.
package transporters

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"instatistics/pkg/log"
)

// Stdout writes entries as line-delimited JSON.
type Stdout struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdout creates a JSON transporter writing to os.Stdout.
func NewStdout() *Stdout {
	return NewStdoutWithWriter(os.Stdout)
}

// NewStdoutWithWriter creates a JSON transporter writing to w.
func NewStdoutWithWriter(w io.Writer) *Stdout {
	return &Stdout{writer: w}
}

// Name returns the transporter identifier.
func (s *Stdout) Name() string {
	return "stdout"
}

// Write encodes the entry as one JSON line.
func (s *Stdout) Write(entry log.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.writer.Write(append(data, '\n'))
	return err
}

// Close is a no-op.
func (s *Stdout) Close() error {
	return nil
}
