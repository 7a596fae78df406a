// Package utils holds small helpers shared by the command line entrypoint.
package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DeferredWriter buffers everything written to it until Flush is called.
// It holds log output while a full screen program owns the terminal.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Len returns the number of buffered bytes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush writes the buffered output to w one line at a time and resets the
// buffer. Writing per line lets w be a zerolog.ConsoleWriter, which expects
// a single JSON event per Write.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	sc := bufio.NewScanner(&d.buf)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write deferred line: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan deferred output: %w", err)
	}

	d.buf.Reset()
	return nil
}
