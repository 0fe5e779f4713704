// Package engine serializes access to the order book and keeps the running
// statistics that the command surface and the market data endpoints report.
package engine

import (
	"sync"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/middleware"
	"github.com/nathanyu/orderbook/internal/orderbook"
)

// Engine owns the book. Mutations take the write lock; snapshot and stats
// queries share the read lock, so a reader always sees the book between
// operations, never mid-match.
type Engine struct {
	mu    sync.RWMutex
	book  *orderbook.OrderBook
	stats domain.BookStats // counter fields only; derived fields filled on read
}

// New returns an engine around an empty book.
func New() *Engine {
	return &Engine{book: orderbook.New()}
}

// Submit places an order, matching it against the opposite side first.
func (e *Engine) Submit(id uint64, side domain.Side, price, quantity int64) (*domain.SubmitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.book.Submit(id, side, price, quantity)
	if err != nil {
		e.stats.Rejected++
		middleware.OrdersRejected.Inc()
		return nil, err
	}
	e.stats.Submitted++
	middleware.OrdersSubmitted.WithLabelValues(string(side)).Inc()
	e.recordFills(res.Fills)
	e.refreshGauges()
	return res, nil
}

// Cancel removes a resting order and returns its final state.
func (e *Engine) Cancel(id uint64) (*domain.Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.book.Cancel(id)
	if err != nil {
		return nil, err
	}
	e.stats.Cancelled++
	middleware.OrdersCancelled.Inc()
	e.refreshGauges()
	return order, nil
}

// Modify adjusts a resting order's price or quantity.
func (e *Engine) Modify(id uint64, price, quantity int64) (*domain.SubmitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.book.Modify(id, price, quantity)
	if err != nil {
		return nil, err
	}
	middleware.OrdersModified.Inc()
	e.recordFills(res.Fills)
	e.refreshGauges()
	return res, nil
}

// Clear drops every resting order and restarts the statistics counters.
// Prometheus counters are cumulative by contract and stay put; the gauges
// snap back to the empty book.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.book.Clear()
	e.stats = domain.BookStats{}
	e.refreshGauges()
}

// Snapshot returns the top depth levels per side, or the whole book for
// depth <= 0.
func (e *Engine) Snapshot(depth int) *domain.BookSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.Snapshot(depth)
}

// Orders returns copies of every resting order in display priority.
func (e *Engine) Orders() []domain.Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.Orders()
}

// Order returns a copy of one resting order.
func (e *Engine) Order(id uint64) (domain.Order, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.Order(id)
}

// Len reports the number of resting orders.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book.Len()
}

// Stats returns the lifetime counters together with the book's current
// shape.
func (e *Engine) Stats() domain.BookStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st := e.stats
	st.LiveOrders = e.book.Len()
	st.BidLevels = e.book.Bids().Levels()
	st.AskLevels = e.book.Asks().Levels()
	st.BidOrders = e.book.Bids().OrderCount()
	st.AskOrders = e.book.Asks().OrderCount()
	if best, ok := e.book.Bids().Best(); ok {
		st.BestBid = best.Price
	}
	if best, ok := e.book.Asks().Best(); ok {
		st.BestAsk = best.Price
	}
	return st
}

func (e *Engine) recordFills(fills []*domain.Fill) {
	if len(fills) == 0 {
		return
	}
	var vol int64
	for _, f := range fills {
		vol += f.Quantity
	}
	e.stats.Fills += int64(len(fills))
	e.stats.Volume += vol
	middleware.FillsTotal.Add(float64(len(fills)))
	middleware.VolumeTraded.Add(float64(vol))
}

func (e *Engine) refreshGauges() {
	middleware.LiveOrders.Set(float64(e.book.Len()))
	middleware.BookDepth.WithLabelValues(string(domain.SideBuy)).Set(float64(e.book.Bids().Levels()))
	middleware.BookDepth.WithLabelValues(string(domain.SideSell)).Set(float64(e.book.Asks().Levels()))
}
