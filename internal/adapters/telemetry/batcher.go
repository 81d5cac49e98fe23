// Package telemetry provides the OpenTelemetry and no-op implementations of ports.Telemetry.
package telemetry

import (
	"bytes"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest buffered output is held.
	DefaultTimeLimit = 50 * time.Millisecond
)

// BatchWriter buffers writes and hands them to onFlush in batches, either when
// sizeLimit bytes have accumulated or timeLimit after the first buffered write.
// It is safe for concurrent use.
type BatchWriter struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewBatchWriter returns a new BatchWriter. Non-positive limits select the defaults.
func NewBatchWriter(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchWriter {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &BatchWriter{sizeLimit: sizeLimit, timeLimit: timeLimit, onFlush: onFlush}
}

// Write buffers p. Writes after Close are passed straight through.
func (w *BatchWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.emit(bytes.Clone(p))
		return len(p), nil
	}

	w.buffer.Write(p)

	if w.buffer.Len() >= w.sizeLimit {
		w.flushLocked()
		return len(p), nil
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.timeLimit, w.Flush)
	}
	return len(p), nil
}

// Flush hands any buffered data to the callback.
func (w *BatchWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

// Close flushes the remaining data and stops the timer.
func (w *BatchWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.flushLocked()
	return nil
}

// flushLocked must be called with mu held.
func (w *BatchWriter) flushLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	if w.buffer.Len() == 0 {
		return
	}
	data := bytes.Clone(w.buffer.Bytes())
	w.buffer.Reset()
	w.emit(data)
}

func (w *BatchWriter) emit(data []byte) {
	if w.onFlush != nil && len(data) > 0 {
		w.onFlush(data)
	}
}
