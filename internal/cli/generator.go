package cli

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/engine"
)

// randomOrder draws a side, a whole-tick price between 100.00 and 200.00,
// and a quantity between 1 and 1000.
func randomOrder(rng *rand.Rand) (domain.Side, int64, int64) {
	side := domain.SideBuy
	if rng.Intn(2) == 1 {
		side = domain.SideSell
	}
	price := int64(10000 + rng.Intn(10001))
	qty := int64(1 + rng.Intn(1000))
	return side, price, qty
}

// generateOrders submits count random orders with ids 1..count and reports
// how long the batch took.
func generateOrders(w io.Writer, e *engine.Engine, count int, rng *rand.Rand) {
	fmt.Fprintf(w, "Generating %d random orders...\n", count)

	start := time.Now()
	for i := 1; i <= count; i++ {
		side, price, qty := randomOrder(rng)
		if _, err := e.Submit(uint64(i), side, price, qty); err != nil {
			fmt.Fprintf(w, "order %d rejected: %v\n", i, err)
		}
	}
	fmt.Fprintf(w, "Order generation took %d microseconds\n", time.Since(start).Microseconds())

	fmt.Fprintf(w, "Generated %d orders successfully.\n", count)
}

// runBenchmark clears the book, then times bulk addition, snapshot
// rendering, and cancellation of the first ids.
func runBenchmark(w io.Writer, e *engine.Engine, count int, rng *rand.Rand) {
	fmt.Fprintln(w, "\n=== PERFORMANCE BENCHMARK ===")
	fmt.Fprintf(w, "Testing with %d orders\n", count)

	e.Clear()

	start := time.Now()
	generateOrders(w, e, count, rng)
	fmt.Fprintf(w, "Order addition took %d microseconds\n", time.Since(start).Microseconds())

	start = time.Now()
	renderSnapshot(w, e.Orders())
	fmt.Fprintf(w, "Snapshot printing took %d microseconds\n", time.Since(start).Microseconds())

	cancels := count
	if cancels > 1000 {
		cancels = 1000
	}
	start = time.Now()
	for i := 1; i <= cancels; i++ {
		_, _ = e.Cancel(uint64(i)) // ids filled during generation are gone
	}
	fmt.Fprintf(w, "Order cancellation took %d microseconds\n", time.Since(start).Microseconds())

	renderStats(w, e.Stats())
}
