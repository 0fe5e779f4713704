package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanyu/orderbook/internal/domain"
)

func fill(price, qty int64) *domain.Fill {
	return &domain.Fill{
		MakerID:   1,
		TakerID:   2,
		Price:     price,
		Quantity:  qty,
		TakerSide: domain.SideBuy,
		Timestamp: time.Now(),
	}
}

func TestRingBuffer_Wraparound(t *testing.T) {
	rb := &RingBuffer{}
	for i := int64(1); i <= 150; i++ {
		rb.Push(fill(i, 1))
	}

	all := rb.All()
	require.Len(t, all, ringCapacity)
	assert.Equal(t, int64(51), all[0].Price) // oldest surviving
	assert.Equal(t, int64(150), all[99].Price)

	recent := rb.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(150), recent[0].Price)
	assert.Equal(t, int64(149), recent[1].Price)
	assert.Equal(t, int64(148), recent[2].Price)
}

func TestRingBuffer_RecentBounds(t *testing.T) {
	rb := &RingBuffer{}
	assert.Nil(t, rb.Recent(5))

	rb.Push(fill(100, 1))
	rb.Push(fill(101, 1))
	assert.Len(t, rb.Recent(10), 2) // capped at what exists
	assert.Nil(t, rb.Recent(0))
}

func TestTape_RecordAndQuery(t *testing.T) {
	tape := NewTape(8)

	tape.Record([]*domain.Fill{fill(10000, 30), fill(10010, 20)})
	tape.Record(nil) // no-op

	assert.Equal(t, int64(2), tape.Total())
	assert.Equal(t, int64(50), tape.Volume())

	last, ok := tape.LastPrice()
	require.True(t, ok)
	assert.Equal(t, int64(10010), last)

	recent := tape.Recent(5)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(10010), recent[0].Price)
	assert.Equal(t, int64(10000), recent[1].Price)
}

func TestTape_Empty(t *testing.T) {
	tape := NewTape(8)
	_, ok := tape.LastPrice()
	assert.False(t, ok)
	assert.Nil(t, tape.Recent(10))
	assert.Nil(t, tape.All())
}

func TestTape_ConsumesFillEvents(t *testing.T) {
	tape := NewTape(8)
	tape.Start()
	defer tape.Stop()

	tape.FillIn <- &domain.FillEvent{Fills: []*domain.Fill{fill(10000, 10)}}
	tape.FillIn <- &domain.FillEvent{Fills: []*domain.Fill{fill(10020, 5)}}

	assert.Eventually(t, func() bool {
		return tape.Total() == 2
	}, 2*time.Second, 10*time.Millisecond)

	last, ok := tape.LastPrice()
	require.True(t, ok)
	assert.Equal(t, int64(10020), last)
}
