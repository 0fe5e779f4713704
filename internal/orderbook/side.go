package orderbook

import (
	"container/list"

	"github.com/tidwall/btree"

	"github.com/nathanyu/orderbook/internal/domain"
)

// bookLevel is one price level: a FIFO queue of the orders resting at this
// price plus their aggregate remaining quantity.
type bookLevel struct {
	Price       int64
	TotalVolume int64
	Orders      *list.List // of *domain.Order, arrival order front to back
}

// BookSide holds the price levels for one side of the book. Levels live in a
// hash map for O(1) price lookup and in a B-tree for best-first ordering; the
// tree is maintained on level create/destroy, so best-of-book never needs a
// rebuild scan. Empty levels are removed immediately.
type BookSide struct {
	side   domain.Side
	levels map[int64]*bookLevel
	tree   *btree.Map[int64, *bookLevel]
	orders int
}

func newBookSide(side domain.Side) *BookSide {
	return &BookSide{
		side:   side,
		levels: make(map[int64]*bookLevel),
		tree:   btree.NewMap[int64, *bookLevel](32),
	}
}

// Side returns which side this is.
func (s *BookSide) Side() domain.Side {
	return s.side
}

// Levels returns the number of price levels.
func (s *BookSide) Levels() int {
	return s.tree.Len()
}

// OrderCount returns the number of resting orders on this side.
func (s *BookSide) OrderCount() int {
	return s.orders
}

// Best returns the top level (highest bid or lowest ask) as an aggregated
// price level, or ok=false when the side is empty.
func (s *BookSide) Best() (domain.PriceLevel, bool) {
	level, ok := s.bestLevel()
	if !ok {
		return domain.PriceLevel{}, false
	}
	return domain.PriceLevel{
		Price:    level.Price,
		Quantity: level.TotalVolume,
		Orders:   level.Orders.Len(),
	}, true
}

// bestLevel returns the level that matches first: the tree maximum for buys,
// the minimum for sells.
func (s *BookSide) bestLevel() (*bookLevel, bool) {
	if s.side == domain.SideBuy {
		_, level, ok := s.tree.Max()
		return level, ok
	}
	_, level, ok := s.tree.Min()
	return level, ok
}

// Depth returns up to n aggregated levels in priority order (all levels when
// n <= 0).
func (s *BookSide) Depth(n int) []domain.PriceLevel {
	if n <= 0 || n > s.tree.Len() {
		n = s.tree.Len()
	}
	out := make([]domain.PriceLevel, 0, n)
	s.scanBestFirst(func(level *bookLevel) bool {
		out = append(out, domain.PriceLevel{
			Price:    level.Price,
			Quantity: level.TotalVolume,
			Orders:   level.Orders.Len(),
		})
		return len(out) < n
	})
	return out
}

// scanBestFirst walks levels in matching priority order: descending price for
// buys, ascending for sells.
func (s *BookSide) scanBestFirst(iter func(*bookLevel) bool) {
	if s.side == domain.SideBuy {
		s.tree.Reverse(func(_ int64, level *bookLevel) bool {
			return iter(level)
		})
		return
	}
	s.tree.Scan(func(_ int64, level *bookLevel) bool {
		return iter(level)
	})
}

// add appends an order to the tail of its price level's queue, creating the
// level if this is the first order at that price.
func (s *BookSide) add(order *domain.Order) (*bookLevel, *list.Element) {
	level, exists := s.levels[order.Price]
	if !exists {
		level = &bookLevel{
			Price:  order.Price,
			Orders: list.New(),
		}
		s.levels[order.Price] = level
		s.tree.Set(order.Price, level)
	}

	level.TotalVolume += order.Remaining
	elem := level.Orders.PushBack(order)
	s.orders++
	return level, elem
}

// remove takes an order out of its level via the stored element handle and
// drops the level if it is now empty.
func (s *BookSide) remove(entry *orderEntry) {
	level := entry.level
	level.Orders.Remove(entry.element)
	level.TotalVolume -= entry.order.Remaining
	s.orders--

	if level.Orders.Len() == 0 {
		s.dropLevel(level)
	}
}

// dropLevel removes an empty level from both structures.
func (s *BookSide) dropLevel(level *bookLevel) {
	delete(s.levels, level.Price)
	s.tree.Delete(level.Price)
}
