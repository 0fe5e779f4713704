package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathanyu/orderbook/internal/domain"
)

// renderSnapshot writes the active-order table, buys before sells, each
// side best price first and FIFO within a level.
func renderSnapshot(w io.Writer, orders []domain.Order) {
	fmt.Fprintln(w, "\n=== ORDER BOOK SNAPSHOT ===")
	fmt.Fprintf(w, "Total Active Orders: %d\n\n", len(orders))

	if len(orders) == 0 {
		fmt.Fprintln(w, "No active orders.")
		return
	}

	fmt.Fprintf(w, "%12s%12s%12s%8s\n", "Order ID", "Price", "Quantity", "Side")
	fmt.Fprintln(w, strings.Repeat("-", 44))
	for _, o := range orders {
		fmt.Fprintf(w, "%12d%12s%12d%8s\n",
			o.ID, domain.FormatPrice(o.Price), o.Remaining, o.Side.Label())
	}
	fmt.Fprintln(w)
}

// renderStats writes the book's lifetime counters and current shape.
func renderStats(w io.Writer, st domain.BookStats) {
	fmt.Fprintln(w, "\n=== ORDER BOOK STATISTICS ===")
	fmt.Fprintf(w, "Active Orders: %d\n", st.LiveOrders)
	fmt.Fprintf(w, "Total Orders Added: %d\n", st.Submitted)
	fmt.Fprintf(w, "Total Orders Cancelled: %d\n", st.Cancelled)
	fmt.Fprintf(w, "Total Orders Rejected: %d\n", st.Rejected)
	fmt.Fprintf(w, "Total Fills: %d\n", st.Fills)
	fmt.Fprintf(w, "Total Volume Traded: %d\n", st.Volume)
	fmt.Fprintf(w, "Bid Levels: %d\n", st.BidLevels)
	fmt.Fprintf(w, "Ask Levels: %d\n", st.AskLevels)
	fmt.Fprintf(w, "Best Bid: %s\n", priceOrDash(st.BestBid))
	fmt.Fprintf(w, "Best Ask: %s\n", priceOrDash(st.BestAsk))
}

func priceOrDash(ticks int64) string {
	if ticks <= 0 {
		return "-"
	}
	return domain.FormatPrice(ticks)
}

// writeSnapshotFile renders the snapshot into a new file at path.
func writeSnapshotFile(path string, orders []domain.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	w := bufio.NewWriter(f)
	renderSnapshot(w, orders)
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
