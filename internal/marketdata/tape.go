package marketdata

import (
	"log"
	"sync"

	"github.com/nathanyu/orderbook/internal/domain"
)

const ringCapacity = 100

// RingBuffer is a fixed-size circular buffer of fills.
type RingBuffer struct {
	data  [ringCapacity]*domain.Fill
	head  int // next write position
	count int
}

// Push adds a fill, evicting the oldest once the buffer is full.
func (rb *RingBuffer) Push(f *domain.Fill) {
	rb.data[rb.head] = f
	rb.head = (rb.head + 1) % ringCapacity
	if rb.count < ringCapacity {
		rb.count++
	}
}

// All returns the buffered fills in chronological order.
func (rb *RingBuffer) All() []*domain.Fill {
	if rb.count == 0 {
		return nil
	}

	result := make([]*domain.Fill, rb.count)
	start := (rb.head - rb.count + ringCapacity) % ringCapacity
	for i := 0; i < rb.count; i++ {
		idx := (start + i) % ringCapacity
		result[i] = rb.data[idx]
	}
	return result
}

// Recent returns up to n fills, newest first.
func (rb *RingBuffer) Recent(n int) []*domain.Fill {
	if n <= 0 || rb.count == 0 {
		return nil
	}
	if n > rb.count {
		n = rb.count
	}

	result := make([]*domain.Fill, n)
	for i := 0; i < n; i++ {
		idx := (rb.head - 1 - i + ringCapacity) % ringCapacity
		result[i] = rb.data[idx]
	}
	return result
}

// Tape records executed fills for market data queries. The most recent
// fills stay queryable in a ring buffer; totals cover the whole run.
type Tape struct {
	mu     sync.RWMutex
	fills  RingBuffer
	total  int64
	volume int64
	last   int64 // last trade price, 0 until the first fill

	// FillIn receives fill events from the sequencer.
	FillIn chan *domain.FillEvent

	done chan struct{}
}

// NewTape creates a tape with the given inbound channel capacity.
func NewTape(bufferSize int) *Tape {
	return &Tape{
		FillIn: make(chan *domain.FillEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Start begins consuming fill events.
func (t *Tape) Start() {
	go t.run()
}

// Stop shuts the tape down.
func (t *Tape) Stop() {
	close(t.done)
}

func (t *Tape) run() {
	log.Println("[marketdata] tape started")
	for {
		select {
		case event := <-t.FillIn:
			t.Record(event.Fills)
		case <-t.done:
			log.Println("[marketdata] tape stopped")
			return
		}
	}
}

// Record appends fills to the tape in the order given.
func (t *Tape) Record(fills []*domain.Fill) {
	if len(fills) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range fills {
		t.fills.Push(f)
		t.total++
		t.volume += f.Quantity
		t.last = f.Price
	}
}

// Recent returns up to n fills, newest first.
func (t *Tape) Recent(n int) []*domain.Fill {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fills.Recent(n)
}

// All returns the buffered fills in chronological order.
func (t *Tape) All() []*domain.Fill {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fills.All()
}

// Total reports the number of fills recorded over the tape's lifetime.
func (t *Tape) Total() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

// Volume reports the total quantity traded over the tape's lifetime.
func (t *Tape) Volume() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.volume
}

// LastPrice returns the price of the most recent fill.
func (t *Tape) LastPrice() (int64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.total > 0
}
