package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/orderbook/internal/domain"
)

func mustSubmit(t *testing.T, ob *OrderBook, id uint64, side domain.Side, price, qty int64) *domain.SubmitResult {
	t.Helper()
	res, err := ob.Submit(id, side, price, qty)
	require.NoError(t, err)
	return res
}

func TestSubmit_RestsOrder(t *testing.T) {
	ob := New()

	res := mustSubmit(t, ob, 1, domain.SideSell, 10010, 1000)
	assert.Empty(t, res.Fills)
	assert.Equal(t, int64(1000), res.Resting)
	assert.Equal(t, uint64(1), res.Sequence)

	best, ok := ob.Asks().Best()
	require.True(t, ok)
	assert.Equal(t, int64(10010), best.Price)
	assert.Equal(t, int64(1000), best.Quantity)
	assert.Equal(t, 1, best.Orders)
	assert.Equal(t, 1, ob.Len())
}

func TestSubmit_AggregatesSamePrice(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 500)
	mustSubmit(t, ob, 2, domain.SideSell, 10010, 300)

	snap := ob.Snapshot(5)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(800), snap.Asks[0].Quantity)
	assert.Equal(t, 2, snap.Asks[0].Orders)
}

func TestSubmit_Validation(t *testing.T) {
	ob := New()

	tests := []struct {
		name string
		id   uint64
		side domain.Side
		p, q int64
		want error
	}{
		{"zero id", 0, domain.SideBuy, 10000, 10, ErrInvalidID},
		{"bad side", 1, domain.Side("short"), 10000, 10, ErrInvalidSide},
		{"zero price", 1, domain.SideBuy, 0, 10, ErrInvalidPrice},
		{"negative price", 1, domain.SideBuy, -100, 10, ErrInvalidPrice},
		{"zero quantity", 1, domain.SideBuy, 10000, 0, ErrInvalidQuantity},
		{"negative quantity", 1, domain.SideBuy, 10000, -5, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ob.Submit(tt.id, tt.side, tt.p, tt.q)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 0, ob.Len()) // nothing rested
}

func TestSubmit_DuplicateID(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	_, err := ob.Submit(1, domain.SideBuy, 10100, 50)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Book unchanged by the rejection.
	order, ok := ob.Order(1)
	require.True(t, ok)
	assert.Equal(t, int64(10000), order.Price)
	assert.Equal(t, int64(100), order.Remaining)
	assert.Equal(t, 1, ob.Len())

	// The id becomes reusable once the original is gone.
	_, err = ob.Cancel(1)
	require.NoError(t, err)
	mustSubmit(t, ob, 1, domain.SideBuy, 10100, 50)
}

func TestBestPriceTracking(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 9990, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 10000, 100)
	mustSubmit(t, ob, 3, domain.SideBuy, 9980, 100)

	best, ok := ob.Bids().Best()
	require.True(t, ok)
	assert.Equal(t, int64(10000), best.Price) // best bid = highest

	mustSubmit(t, ob, 4, domain.SideSell, 10010, 100)
	mustSubmit(t, ob, 5, domain.SideSell, 10020, 100)

	best, ok = ob.Asks().Best()
	require.True(t, ok)
	assert.Equal(t, int64(10010), best.Price) // best ask = lowest

	// Removing the top bid promotes the next level.
	_, err := ob.Cancel(2)
	require.NoError(t, err)
	best, ok = ob.Bids().Best()
	require.True(t, ok)
	assert.Equal(t, int64(9990), best.Price)
}

func TestMatch_FullFill(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 1000)
	res := mustSubmit(t, ob, 2, domain.SideBuy, 10010, 1000)

	require.Len(t, res.Fills, 1)
	fill := res.Fills[0]
	assert.Equal(t, int64(1000), fill.Quantity)
	assert.Equal(t, int64(10010), fill.Price) // executes at maker's price
	assert.Equal(t, uint64(1), fill.MakerID)
	assert.Equal(t, uint64(2), fill.TakerID)
	assert.Equal(t, domain.SideBuy, fill.TakerSide)
	assert.NotEmpty(t, fill.ExecID)

	assert.Equal(t, int64(0), res.Resting)
	assert.Equal(t, 0, ob.Len())
	_, ok := ob.Asks().Best()
	assert.False(t, ok)
}

func TestMatch_PartialFillRestingRemains(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 1000)
	res := mustSubmit(t, ob, 2, domain.SideBuy, 10010, 200)

	require.Len(t, res.Fills, 1)
	assert.Equal(t, int64(200), res.Fills[0].Quantity)
	assert.Equal(t, int64(0), res.Resting)

	maker, ok := ob.Order(1)
	require.True(t, ok)
	assert.Equal(t, int64(800), maker.Remaining)

	snap := ob.Snapshot(5)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(800), snap.Asks[0].Quantity)
}

func TestMatch_IncomingSellAgainstRestingBuy(t *testing.T) {
	// Buy id=1 @100.00 qty=50, then Sell id=2 @100.00 qty=30:
	// one fill (maker=1, taker=2, price=100.00, qty=30), id=1 rests with 20.
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 50)
	res := mustSubmit(t, ob, 2, domain.SideSell, 10000, 30)

	require.Len(t, res.Fills, 1)
	assert.Equal(t, uint64(1), res.Fills[0].MakerID)
	assert.Equal(t, uint64(2), res.Fills[0].TakerID)
	assert.Equal(t, int64(10000), res.Fills[0].Price)
	assert.Equal(t, int64(30), res.Fills[0].Quantity)
	assert.Equal(t, int64(0), res.Resting)

	maker, ok := ob.Order(1)
	require.True(t, ok)
	assert.Equal(t, int64(20), maker.Remaining)
}

func TestMatch_SweepsLevelsBestFirst(t *testing.T) {
	// Sell id=1 @99 qty=10; Sell id=2 @100 qty=10; Buy id=3 @100 qty=15:
	// fills (1,3,99,10) then (2,3,100,5); id=2 rests 5; id=3 fully filled.
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 9900, 10)
	mustSubmit(t, ob, 2, domain.SideSell, 10000, 10)
	res := mustSubmit(t, ob, 3, domain.SideBuy, 10000, 15)

	require.Len(t, res.Fills, 2)
	assert.Equal(t, uint64(1), res.Fills[0].MakerID)
	assert.Equal(t, int64(9900), res.Fills[0].Price)
	assert.Equal(t, int64(10), res.Fills[0].Quantity)
	assert.Equal(t, uint64(2), res.Fills[1].MakerID)
	assert.Equal(t, int64(10000), res.Fills[1].Price)
	assert.Equal(t, int64(5), res.Fills[1].Quantity)

	assert.Equal(t, int64(0), res.Resting)
	rest, ok := ob.Order(2)
	require.True(t, ok)
	assert.Equal(t, int64(5), rest.Remaining)
	_, ok = ob.Order(3)
	assert.False(t, ok)
}

func TestMatch_NoCross(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10020, 100)
	res := mustSubmit(t, ob, 2, domain.SideBuy, 10010, 100)

	assert.Empty(t, res.Fills)
	assert.Equal(t, int64(100), res.Resting)
	assert.Equal(t, 2, ob.Len())
}

func TestMatch_FIFOWithinLevel(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 60)
	mustSubmit(t, ob, 2, domain.SideBuy, 10000, 40)

	// Covers both resting buys: id=1 must fill completely before id=2.
	res := mustSubmit(t, ob, 3, domain.SideSell, 10000, 100)

	require.Len(t, res.Fills, 2)
	assert.Equal(t, uint64(1), res.Fills[0].MakerID)
	assert.Equal(t, int64(60), res.Fills[0].Quantity)
	assert.Equal(t, uint64(2), res.Fills[1].MakerID)
	assert.Equal(t, int64(40), res.Fills[1].Quantity)
}

func TestMatch_PricePriorityBeatsArrival(t *testing.T) {
	ob := New()

	// Lower-priced buy arrives first; higher-priced buy must still match first.
	mustSubmit(t, ob, 1, domain.SideBuy, 9990, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 10000, 100)

	res := mustSubmit(t, ob, 3, domain.SideSell, 9990, 150)

	require.Len(t, res.Fills, 2)
	assert.Equal(t, uint64(2), res.Fills[0].MakerID)
	assert.Equal(t, int64(10000), res.Fills[0].Price)
	assert.Equal(t, uint64(1), res.Fills[1].MakerID)
	assert.Equal(t, int64(9990), res.Fills[1].Price)
}

func TestCancel(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 1000)
	cancelled, err := ob.Cancel(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cancelled.Remaining)

	assert.Equal(t, 0, ob.Len())
	_, ok := ob.Asks().Best()
	assert.False(t, ok)
}

func TestCancel_NotFound(t *testing.T) {
	ob := New()

	_, err := ob.Cancel(42)
	assert.ErrorIs(t, err, ErrNotFound)

	// A fully filled order is no longer cancellable.
	mustSubmit(t, ob, 1, domain.SideSell, 10010, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 10010, 100)
	_, err = ob.Cancel(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel_MiddleOfLevel(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 100)
	mustSubmit(t, ob, 2, domain.SideSell, 10010, 200)
	mustSubmit(t, ob, 3, domain.SideSell, 10010, 300)

	_, err := ob.Cancel(2)
	require.NoError(t, err)

	snap := ob.Snapshot(5)
	require.Len(t, snap.Asks, 1)
	assert.Equal(t, int64(400), snap.Asks[0].Quantity) // 100 + 300

	// FIFO order of the survivors is untouched.
	res := mustSubmit(t, ob, 4, domain.SideBuy, 10010, 400)
	require.Len(t, res.Fills, 2)
	assert.Equal(t, uint64(1), res.Fills[0].MakerID)
	assert.Equal(t, uint64(3), res.Fills[1].MakerID)
}

func TestCancel_RoundTripRestoresBook(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 9990, 100)
	mustSubmit(t, ob, 2, domain.SideSell, 10010, 200)

	before := ob.Snapshot(0)

	mustSubmit(t, ob, 3, domain.SideBuy, 10000, 70)
	_, err := ob.Cancel(3)
	require.NoError(t, err)

	after := ob.Snapshot(0)
	assert.Equal(t, before.Bids, after.Bids)
	assert.Equal(t, before.Asks, after.Asks)
	assert.Equal(t, 2, ob.Len())
}

func TestModify_ReduceKeepsPriority(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 10000, 100)

	res, err := ob.Modify(1, 10000, 40)
	require.NoError(t, err)
	assert.Empty(t, res.Fills)
	assert.Equal(t, int64(40), res.Resting)
	assert.Equal(t, uint64(1), res.Sequence) // sequence kept

	snap := ob.Snapshot(5)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, int64(140), snap.Bids[0].Quantity)

	// id=1 still fills first at its level.
	fills := mustSubmit(t, ob, 3, domain.SideSell, 10000, 50).Fills
	require.Len(t, fills, 2)
	assert.Equal(t, uint64(1), fills[0].MakerID)
	assert.Equal(t, int64(40), fills[0].Quantity)
	assert.Equal(t, uint64(2), fills[1].MakerID)
}

func TestModify_IncreaseForfeitsPriority(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 10000, 100)

	res, err := ob.Modify(1, 10000, 150)
	require.NoError(t, err)
	assert.Equal(t, int64(150), res.Resting)
	assert.Greater(t, res.Sequence, uint64(2)) // fresh sequence

	// id=2 now fills first.
	fills := mustSubmit(t, ob, 3, domain.SideSell, 10000, 120).Fills
	require.Len(t, fills, 2)
	assert.Equal(t, uint64(2), fills[0].MakerID)
	assert.Equal(t, int64(100), fills[0].Quantity)
	assert.Equal(t, uint64(1), fills[1].MakerID)
	assert.Equal(t, int64(20), fills[1].Quantity)
}

func TestModify_RepriceMatchesImmediately(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10010, 100)
	mustSubmit(t, ob, 2, domain.SideBuy, 9990, 100)

	// Repricing the buy across the spread trades at the resting ask's price.
	res, err := ob.Modify(2, 10020, 100)
	require.NoError(t, err)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, uint64(1), res.Fills[0].MakerID)
	assert.Equal(t, uint64(2), res.Fills[0].TakerID)
	assert.Equal(t, int64(10010), res.Fills[0].Price)
	assert.Equal(t, int64(0), res.Resting)
	assert.Equal(t, 0, ob.Len())
}

func TestModify_SamePriceSameQuantityIsNoOp(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	res, err := ob.Modify(1, 10000, 100)
	require.NoError(t, err)
	assert.Empty(t, res.Fills)
	assert.Equal(t, int64(100), res.Resting)
	assert.Equal(t, uint64(1), res.Sequence)
}

func TestModify_Errors(t *testing.T) {
	ob := New()
	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)

	_, err := ob.Modify(99, 10000, 50)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ob.Modify(1, 0, 50)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = ob.Modify(1, 10000, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// All rejected before mutating anything.
	order, ok := ob.Order(1)
	require.True(t, ok)
	assert.Equal(t, int64(100), order.Remaining)
}

func TestSnapshot_Depth(t *testing.T) {
	ob := New()

	for i := int64(0); i < 5; i++ {
		mustSubmit(t, ob, uint64(i+1), domain.SideBuy, 9990-i*10, 100)
	}

	snap := ob.Snapshot(3)
	require.Len(t, snap.Bids, 3)
	assert.Equal(t, int64(9990), snap.Bids[0].Price)
	assert.Equal(t, int64(9980), snap.Bids[1].Price)
	assert.Equal(t, int64(9970), snap.Bids[2].Price)

	full := ob.Snapshot(0)
	assert.Len(t, full.Bids, 5)
}

func TestSnapshot_Empty(t *testing.T) {
	ob := New()
	snap := ob.Snapshot(5)
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
	_, ok := snap.BestBid()
	assert.False(t, ok)
}

func TestOrders_DisplayPriority(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideSell, 10020, 10)
	mustSubmit(t, ob, 2, domain.SideBuy, 9990, 20)
	mustSubmit(t, ob, 3, domain.SideBuy, 10000, 30)
	mustSubmit(t, ob, 4, domain.SideSell, 10010, 40)
	mustSubmit(t, ob, 5, domain.SideBuy, 10000, 50)

	orders := ob.Orders()
	require.Len(t, orders, 5)

	// Buys first: price descending, arrival order within a level.
	assert.Equal(t, uint64(3), orders[0].ID)
	assert.Equal(t, uint64(5), orders[1].ID)
	assert.Equal(t, uint64(2), orders[2].ID)
	// Then sells: price ascending.
	assert.Equal(t, uint64(4), orders[3].ID)
	assert.Equal(t, uint64(1), orders[4].ID)
}

func TestClear(t *testing.T) {
	ob := New()

	mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	mustSubmit(t, ob, 2, domain.SideSell, 10010, 100)
	ob.Clear()

	assert.Equal(t, 0, ob.Len())
	assert.Equal(t, 0, ob.Bids().Levels())
	assert.Equal(t, 0, ob.Asks().Levels())

	// Sequence counter restarts with the book.
	res := mustSubmit(t, ob, 1, domain.SideBuy, 10000, 100)
	assert.Equal(t, uint64(1), res.Sequence)
}

func TestQuantityConservation(t *testing.T) {
	ob := New()

	submitted := int64(0)
	var filled int64
	add := func(id uint64, side domain.Side, price, qty int64) {
		res := mustSubmit(t, ob, id, side, price, qty)
		submitted += qty
		for _, f := range res.Fills {
			filled += 2 * f.Quantity // fill consumes quantity on both sides
		}
	}

	add(1, domain.SideBuy, 10000, 100)
	add(2, domain.SideSell, 10010, 80)
	add(3, domain.SideSell, 10000, 60)
	add(4, domain.SideBuy, 10010, 120)
	add(5, domain.SideSell, 9990, 300)

	resting := int64(0)
	for _, o := range ob.Orders() {
		resting += o.Remaining
	}
	assert.Equal(t, submitted, resting+filled)
}
