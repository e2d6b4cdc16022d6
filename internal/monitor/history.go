package monitor

import (
	"math"
	"sync"
)

// DefaultHistorySize is the default number of samples retained per metric.
const DefaultHistorySize = 60

// History keeps the most recent CPU, memory and disk percentages for
// sparkline rendering. It is in-memory only and safe for concurrent use.
type History struct {
	mu   sync.RWMutex
	cpu  *ringBuffer
	mem  *ringBuffer
	disk *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
}

// NewHistory creates a history with the given capacity per metric.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		cpu:  newRingBuffer(size),
		mem:  newRingBuffer(size),
		disk: newRingBuffer(size),
	}
}

// Push records a sample. NaN fields are skipped so a failed probe leaves a
// gap in one series without shifting the others.
func (h *History) Push(s Sample) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cpu.pushFinite(s.CPU)
	h.mem.pushFinite(s.Mem)
	h.disk.pushFinite(s.Disk)
}

// CPU returns up to count of the most recent CPU values, oldest first.
func (h *History) CPU(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.last(count)
}

// Mem returns up to count of the most recent memory values, oldest first.
func (h *History) Mem(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mem.last(count)
}

// Disk returns up to count of the most recent disk values, oldest first.
func (h *History) Disk(count int) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.disk.last(count)
}

// Len returns the number of CPU values held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cpu.count
}

// Reset drops all recorded values.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, rb := range []*ringBuffer{h.cpu, h.mem, h.disk} {
		rb.head, rb.count = 0, 0
	}
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{data: make([]float64, size)}
}

func (rb *ringBuffer) pushFinite(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	rb.data[rb.head] = v
	rb.head = (rb.head + 1) % len(rb.data)
	if rb.count < len(rb.data) {
		rb.count++
	}
}

func (rb *ringBuffer) last(count int) []float64 {
	if count <= 0 || rb.count == 0 {
		return nil
	}
	if count > rb.count {
		count = rb.count
	}

	out := make([]float64, count)
	start := (rb.head - count + len(rb.data)) % len(rb.data)
	for i := 0; i < count; i++ {
		out[i] = rb.data[(start+i)%len(rb.data)]
	}
	return out
}
