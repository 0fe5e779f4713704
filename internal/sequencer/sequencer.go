package sequencer

import (
	"log"
	"sync/atomic"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/engine"
	"github.com/nathanyu/orderbook/internal/middleware"
)

// Sequencer stamps monotonically increasing sequence IDs on incoming order
// events, applies them to the engine one at a time, and stamps the resulting
// fills with outbound sequence IDs. Routing every mutation through one
// goroutine keeps the book single-writer without contending on the engine
// lock from many producers.
type Sequencer struct {
	inboundSeq  atomic.Uint64
	outboundSeq atomic.Uint64
	engine      *engine.Engine

	// Channels for the pipeline
	OrderIn chan *domain.OrderEvent // inbound order flow
	FillOut chan *domain.FillEvent  // outbound fills, in generation order

	done chan struct{}
}

// NewSequencer creates a sequencer wired to the given engine.
func NewSequencer(e *engine.Engine, bufferSize int) *Sequencer {
	return &Sequencer{
		engine:  e,
		OrderIn: make(chan *domain.OrderEvent, bufferSize),
		FillOut: make(chan *domain.FillEvent, bufferSize),
		done:    make(chan struct{}),
	}
}

// Start begins the sequencer's application loop in a goroutine.
func (s *Sequencer) Start() {
	go s.run()
}

// Stop signals the sequencer to shut down.
func (s *Sequencer) Stop() {
	close(s.done)
}

// run is the main application loop. Single consumer of OrderIn.
func (s *Sequencer) run() {
	log.Println("[sequencer] started")
	for {
		select {
		case event := <-s.OrderIn:
			s.processEvent(event)
		case <-s.done:
			log.Println("[sequencer] stopped")
			return
		}
	}
}

// processEvent stamps the inbound sequence and dispatches to the engine.
func (s *Sequencer) processEvent(event *domain.OrderEvent) {
	seq := s.inboundSeq.Add(1)
	event.Sequence = seq
	middleware.SequencerInboundSeq.Set(float64(seq))

	var fills []*domain.Fill
	switch event.Action {
	case domain.OrderActionSubmit:
		res, err := s.engine.Submit(event.ID, event.Side, event.Price, event.Quantity)
		if err != nil {
			log.Printf("[sequencer] order %d rejected: %v", event.ID, err)
			return
		}
		fills = res.Fills
	case domain.OrderActionCancel:
		if _, err := s.engine.Cancel(event.ID); err != nil {
			log.Printf("[sequencer] cancel %d: %v", event.ID, err)
		}
		return
	default:
		log.Printf("[sequencer] unknown action %q for order %d", event.Action, event.ID)
		return
	}
	if len(fills) == 0 {
		return
	}

	for _, fill := range fills {
		outSeq := s.outboundSeq.Add(1)
		fill.Sequence = outSeq
	}
	middleware.SequencerOutboundSeq.Set(float64(s.outboundSeq.Load()))

	// Fill order is part of the matching contract, so the send blocks
	// rather than dropping when the consumer lags.
	select {
	case s.FillOut <- &domain.FillEvent{Fills: fills}:
	case <-s.done:
	}
}

// CurrentInboundSeq returns the current inbound sequence number.
func (s *Sequencer) CurrentInboundSeq() uint64 {
	return s.inboundSeq.Load()
}

// CurrentOutboundSeq returns the current outbound sequence number.
func (s *Sequencer) CurrentOutboundSeq() uint64 {
	return s.outboundSeq.Load()
}
