package transporters

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"instatistics/pkg/log"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\x1b[0m"
	colorGray   = "\x1b[90m"
	colorBlue   = "\x1b[34m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

// Console writes entries as human-readable lines:
//
//	15:04:05.000 INFO  message key=value ... (file.go:12) [request-id]
//
// Levels are colored when the output is a terminal.
type Console struct {
	mu     sync.Mutex
	writer io.Writer
	color  bool
}

// NewConsole creates a console transporter writing to os.Stderr.
func NewConsole() *Console {
	return &Console{
		writer: os.Stderr,
		color:  isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

// NewConsoleWithWriter creates an uncolored console transporter writing to w.
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{writer: w}
}

// Name returns the transporter identifier.
func (c *Console) Name() string {
	return "console"
}

// Write formats the entry as one line. Fields are sorted by key.
func (c *Console) Write(entry log.Entry) error {
	var buf bytes.Buffer

	buf.WriteString(entry.Timestamp.Format("15:04:05.000"))
	buf.WriteByte(' ')
	if c.color {
		buf.WriteString(levelColor(entry.Level))
	}
	fmt.Fprintf(&buf, "%-5s", entry.Level)
	if c.color {
		buf.WriteString(colorReset)
	}
	buf.WriteByte(' ')
	buf.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, log.FieldValue(entry.Fields[k]))
	}

	if entry.Caller != "" {
		if c.color {
			buf.WriteString(colorGray)
		}
		fmt.Fprintf(&buf, " (%s)", entry.Caller)
		if c.color {
			buf.WriteString(colorReset)
		}
	}
	if entry.RequestID != "" {
		fmt.Fprintf(&buf, " [%s]", entry.RequestID)
	}
	buf.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.writer.Write(buf.Bytes())
	return err
}

// Close is a no-op.
func (c *Console) Close() error {
	return nil
}

func levelColor(l log.Level) string {
	switch {
	case l >= log.Error:
		return colorRed
	case l == log.Warn:
		return colorYellow
	case l == log.Info:
		return colorBlue
	default:
		return colorGray
	}
}
