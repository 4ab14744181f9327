package renderer

import (
	"sync"
	"sync/atomic"

	"github.com/spaghettifunk/anima-gfx/engine/renderer/metadata"
)

// streamBuffer tracks the append cursor of a stream usage buffer.
type streamBuffer struct {
	buf    metadata.Buffer
	offset atomic.Int64
	size   int64
}

type streamTracker struct {
	mu      sync.RWMutex
	entries []*streamBuffer
}

func (t *streamTracker) add(buf metadata.Buffer, size int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, &streamBuffer{buf: buf, size: int64(size)})
}

func (t *streamTracker) find(buf metadata.Buffer) *streamBuffer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entries {
		if e.buf == buf {
			return e
		}
	}
	return nil
}

func (t *streamTracker) remove(buf metadata.Buffer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, e := range t.entries {
		if e.buf == buf {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			return true
		}
	}
	return false
}

// resetOffsets rewinds every cursor to the start of its buffer.
func (t *streamTracker) resetOffsets() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entries {
		e.offset.Store(0)
	}
}

func (t *streamTracker) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
