package testutil

import (
	"bytes"
	"strings"
	"sync"
)

// SyncBuffer is a goroutine-safe io.Writer for capturing log output from
// workers and background loops in tests.
type SyncBuffer struct {
	mu         sync.Mutex
	buf        bytes.Buffer
	writeCount int
}

// NewSyncBuffer creates an empty SyncBuffer.
func NewSyncBuffer() *SyncBuffer {
	return &SyncBuffer{}
}

// Write implements io.Writer.
func (sb *SyncBuffer) Write(p []byte) (int, error) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.writeCount++
	return sb.buf.Write(p)
}

// String returns the current buffer contents.
func (sb *SyncBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.buf.String()
}

// Contains reports whether the buffer contains substr.
func (sb *SyncBuffer) Contains(substr string) bool {
	return strings.Contains(sb.String(), substr)
}

// WriteCount returns the number of Write calls.
func (sb *SyncBuffer) WriteCount() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.writeCount
}

// Reset clears the buffer and the write counter.
func (sb *SyncBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Reset()
	sb.writeCount = 0
}
