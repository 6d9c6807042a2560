// Package utils holds small helpers shared by the CLI entry point.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush. Each Write is kept as one
// record so line-oriented writers such as zerolog.ConsoleWriter receive the
// same chunks they would have received directly.
type DeferredWriter struct {
	mu      sync.Mutex
	records [][]byte
}

// Write implements io.Writer.
func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = append(w.records, bytes.Clone(p))
	return len(p), nil
}

// Flush writes every buffered record to out in order and clears the buffer.
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	records := w.records
	w.records = nil
	w.mu.Unlock()

	for _, r := range records {
		if _, err := out.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of buffered records.
func (w *DeferredWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}
