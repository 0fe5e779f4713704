package orderbook

import (
	"container/list"
	"time"

	"github.com/google/uuid"

	"github.com/nathanyu/orderbook/internal/domain"
)

// orderEntry maps a live order to its side, level and queue element so cancel
// and modify never scan a queue. The element handle stays valid no matter what
// other orders are removed around it.
type orderEntry struct {
	order   *domain.Order
	element *list.Element
	level   *bookLevel
	side    *BookSide
}

// OrderBook is a two-sided limit order book for a single instrument with
// price-time (FIFO) matching. Every live order appears in exactly one price
// level and one index entry; a public call either completes with both in a
// consistent state or rejects before touching anything.
//
// The book is not safe for concurrent use. Callers serialize mutations
// externally (see the engine package).
type OrderBook struct {
	bids  *BookSide
	asks  *BookSide
	index map[uint64]*orderEntry
	seq   uint64
}

// New creates an empty order book.
func New() *OrderBook {
	return &OrderBook{
		bids:  newBookSide(domain.SideBuy),
		asks:  newBookSide(domain.SideSell),
		index: make(map[uint64]*orderEntry),
	}
}

// Bids returns the buy side.
func (b *OrderBook) Bids() *BookSide { return b.bids }

// Asks returns the sell side.
func (b *OrderBook) Asks() *BookSide { return b.asks }

// Len returns the number of live orders.
func (b *OrderBook) Len() int { return len(b.index) }

// Order returns a copy of a live order.
func (b *OrderBook) Order(id uint64) (domain.Order, bool) {
	entry, ok := b.index[id]
	if !ok {
		return domain.Order{}, false
	}
	return *entry.order, true
}

// Submit matches an incoming order against the opposite side and rests any
// remainder at the tail of its price level. The result carries the fills in
// generation order plus the quantity left resting. Validation and the
// duplicate-id check happen before any mutation.
func (b *OrderBook) Submit(id uint64, side domain.Side, price, quantity int64) (*domain.SubmitResult, error) {
	if err := validateSubmit(id, side, price, quantity); err != nil {
		return nil, err
	}
	if _, live := b.index[id]; live {
		return nil, ErrDuplicateID
	}

	b.seq++
	taker := &domain.Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Remaining: quantity,
		Sequence:  b.seq,
		CreatedAt: time.Now(),
	}

	fills := b.match(taker)
	if taker.Remaining > 0 {
		b.rest(taker)
	}

	return &domain.SubmitResult{
		OrderID:  id,
		Fills:    fills,
		Resting:  taker.Remaining,
		Sequence: taker.Sequence,
	}, nil
}

// match consumes the opposite side best level first, oldest order first
// within each level. Trades execute at the maker's price.
func (b *OrderBook) match(taker *domain.Order) []*domain.Fill {
	opposite := b.sideFor(taker.Side.Opposite())
	now := time.Now()

	var fills []*domain.Fill
	for taker.Remaining > 0 {
		level, ok := opposite.bestLevel()
		if !ok || !crosses(taker, level.Price) {
			break
		}

		// FIFO: consume from the head of the level's queue
		for taker.Remaining > 0 && level.Orders.Len() > 0 {
			front := level.Orders.Front()
			maker := front.Value.(*domain.Order)

			matchQty := min(taker.Remaining, maker.Remaining)
			taker.Remaining -= matchQty
			maker.Remaining -= matchQty
			level.TotalVolume -= matchQty

			fills = append(fills, &domain.Fill{
				ExecID:    uuid.NewString(),
				MakerID:   maker.ID,
				TakerID:   taker.ID,
				Price:     maker.Price, // execute at maker's (resting) price
				Quantity:  matchQty,
				TakerSide: taker.Side,
				Timestamp: now,
			})

			if maker.Remaining == 0 {
				level.Orders.Remove(front)
				delete(b.index, maker.ID)
				opposite.orders--
			}
		}

		if level.Orders.Len() == 0 {
			opposite.dropLevel(level)
		}
	}
	return fills
}

// crosses reports whether the taker's limit reaches the given opposite price.
func crosses(taker *domain.Order, oppositePrice int64) bool {
	if taker.Side == domain.SideBuy {
		return taker.Price >= oppositePrice
	}
	return taker.Price <= oppositePrice
}

// rest places the order on its own side and indexes it.
func (b *OrderBook) rest(order *domain.Order) {
	side := b.sideFor(order.Side)
	level, elem := side.add(order)
	b.index[order.ID] = &orderEntry{
		order:   order,
		element: elem,
		level:   level,
		side:    side,
	}
}

// Cancel removes a live order and returns it (its Remaining is the quantity
// taken off the book). Unknown ids fail with ErrNotFound, book unchanged.
func (b *OrderBook) Cancel(id uint64) (*domain.Order, error) {
	entry, ok := b.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	entry.side.remove(entry)
	delete(b.index, id)
	return entry.order, nil
}

// Modify applies cancel-replace semantics: reducing quantity at the same
// price mutates the order in place and keeps its queue position (the
// submitted quantity shrinks by the same delta); increasing quantity or
// changing price cancels the order and resubmits it with a fresh sequence
// number, so the replacement passes through matching and may trade
// immediately. A same-price same-quantity modify is a no-op ack.
func (b *OrderBook) Modify(id uint64, price, quantity int64) (*domain.SubmitResult, error) {
	if price <= 0 {
		return nil, ErrInvalidPrice
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	entry, ok := b.index[id]
	if !ok {
		return nil, ErrNotFound
	}

	order := entry.order
	if price == order.Price && quantity <= order.Remaining {
		delta := order.Remaining - quantity
		order.Remaining = quantity
		order.Quantity -= delta
		entry.level.TotalVolume -= delta
		return &domain.SubmitResult{
			OrderID:  id,
			Resting:  quantity,
			Sequence: order.Sequence,
		}, nil
	}

	// Priority forfeited: cancel, then resubmit on the same side.
	entry.side.remove(entry)
	delete(b.index, id)
	return b.Submit(id, order.Side, price, quantity)
}

// Snapshot returns a depth projection of both sides, best-first, up to depth
// levels per side (all levels when depth <= 0). The snapshot is a full copy.
func (b *OrderBook) Snapshot(depth int) *domain.BookSnapshot {
	return &domain.BookSnapshot{
		Bids:  b.bids.Depth(depth),
		Asks:  b.asks.Depth(depth),
		Taken: time.Now(),
	}
}

// Orders returns copies of every live order in display priority: buys before
// sells, each side by price priority then arrival.
func (b *OrderBook) Orders() []domain.Order {
	out := make([]domain.Order, 0, len(b.index))
	collect := func(side *BookSide) {
		side.scanBestFirst(func(level *bookLevel) bool {
			for e := level.Orders.Front(); e != nil; e = e.Next() {
				out = append(out, *e.Value.(*domain.Order))
			}
			return true
		})
	}
	collect(b.bids)
	collect(b.asks)
	return out
}

// Clear empties the book and resets the arrival counter.
func (b *OrderBook) Clear() {
	b.bids = newBookSide(domain.SideBuy)
	b.asks = newBookSide(domain.SideSell)
	b.index = make(map[uint64]*orderEntry)
	b.seq = 0
}

func (b *OrderBook) sideFor(side domain.Side) *BookSide {
	if side == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

func validateSubmit(id uint64, side domain.Side, price, quantity int64) error {
	if id == 0 {
		return ErrInvalidID
	}
	if !side.Valid() {
		return ErrInvalidSide
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
