package domain

import "time"

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Label returns the display label used in text snapshots.
func (s Side) Label() string {
	if s == SideBuy {
		return "BUY"
	}
	return "SELL"
}

// SideFromCode maps the CSV/REPL encoding (0=buy, 1=sell) to a Side.
func SideFromCode(code int) (Side, bool) {
	switch code {
	case 0:
		return SideBuy, true
	case 1:
		return SideSell, true
	default:
		return "", false
	}
}

// Order represents a limit order resting in (or entering) the book.
// Prices are in ticks (int64 cents) to avoid floating-point issues.
type Order struct {
	ID        uint64    `json:"id"`
	Side      Side      `json:"side"`
	Price     int64     `json:"price"` // in ticks, e.g. 10010 = 100.10
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
	Sequence  uint64    `json:"sequence"` // arrival counter, FIFO tie-break
	CreatedAt time.Time `json:"created_at"`
}

// Fill represents a trade between a resting (maker) and an incoming (taker) order.
// Trades always execute at the maker's price.
type Fill struct {
	ExecID    string    `json:"exec_id"`
	MakerID   uint64    `json:"maker_id"`
	TakerID   uint64    `json:"taker_id"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	TakerSide Side      `json:"taker_side"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  uint64    `json:"sequence,omitempty"` // outbound sequence, stamped by the sequencer
}

// SubmitResult is the ack for a submit (or modify): the fills generated while
// matching, in generation order, plus the quantity left resting on the book.
type SubmitResult struct {
	OrderID  uint64  `json:"order_id"`
	Fills    []*Fill `json:"fills"`
	Resting  int64   `json:"resting"` // 0 when fully filled or nothing rested
	Sequence uint64  `json:"sequence"`
}

// PriceLevel is an aggregated price level in a depth snapshot.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

// BookSnapshot is a point-in-time depth projection of both sides,
// best-first per side. It is a full copy and stays valid after
// subsequent book mutations.
type BookSnapshot struct {
	Bids  []PriceLevel `json:"bids"`
	Asks  []PriceLevel `json:"asks"`
	Taken time.Time    `json:"taken"`
}

// BestBid returns the top bid level, if any.
func (s *BookSnapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the top ask level, if any.
func (s *BookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}

// BookStats holds running counters for one book's lifetime.
// BestBid/BestAsk are 0 when the side is empty (0 is never a valid price).
type BookStats struct {
	Submitted  int64 `json:"submitted"`
	Rejected   int64 `json:"rejected"`
	Cancelled  int64 `json:"cancelled"`
	Fills      int64 `json:"fills"`
	Volume     int64 `json:"volume"` // total traded quantity
	LiveOrders int   `json:"live_orders"`
	BidLevels  int   `json:"bid_levels"`
	AskLevels  int   `json:"ask_levels"`
	BidOrders  int   `json:"bid_orders"`
	AskOrders  int   `json:"ask_orders"`
	BestBid    int64 `json:"best_bid"`
	BestAsk    int64 `json:"best_ask"`
}

// OrderAction is the action type sent through the sequencer.
type OrderAction string

const (
	OrderActionSubmit OrderAction = "submit"
	OrderActionCancel OrderAction = "cancel"
)

// OrderEvent is one mutation request flowing through the sequencer pipeline.
// Cancel events carry only the ID.
type OrderEvent struct {
	Action   OrderAction
	ID       uint64
	Side     Side
	Price    int64
	Quantity int64
	Sequence uint64 // inbound sequence, stamped by the sequencer
}

// FillEvent carries the fills one order event produced, in generation order.
type FillEvent struct {
	Fills []*Fill
}
