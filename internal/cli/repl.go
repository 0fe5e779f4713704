package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/engine"
	"github.com/nathanyu/orderbook/internal/orderbook"
)

// runREPL reads commands line by line until quit or EOF.
func runREPL(e *engine.Engine, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Interactive Mode - Type 'help' for commands")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			fmt.Fprintln(out, "Commands: add, modify, cancel, snapshot, stats, clear, quit")
		case "snapshot":
			if len(fields) >= 2 {
				if err := writeSnapshotFile(fields[1], e.Orders()); err != nil {
					fmt.Fprintf(out, "Failed to write snapshot: %v.\n", err)
					continue
				}
				fmt.Fprintf(out, "Snapshot saved to %s.\n", fields[1])
				continue
			}
			renderSnapshot(out, e.Orders())
		case "stats":
			renderStats(out, e.Stats())
		case "clear":
			e.Clear()
			fmt.Fprintln(out, "All orders cleared.")
		case "add":
			replAdd(e, fields, out)
		case "cancel":
			replCancel(e, fields, out)
		case "modify":
			replModify(e, fields, out)
		default:
			fmt.Fprintln(out, "Unknown command. Type 'help' for available commands.")
		}
	}
}

// replAdd handles `add <id> <price> <qty> <side>`.
func replAdd(e *engine.Engine, fields []string, out io.Writer) {
	if len(fields) != 5 {
		fmt.Fprintln(out, "Usage: add <id> <price> <qty> <side>")
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid order id %q.\n", fields[1])
		return
	}
	price, err := domain.ParsePrice(fields[2])
	if err != nil {
		fmt.Fprintf(out, "Invalid price %q: %v.\n", fields[2], err)
		return
	}
	qty, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid quantity %q.\n", fields[3])
		return
	}
	side, err := parseSide(fields[4])
	if err != nil {
		fmt.Fprintf(out, "%v.\n", err)
		return
	}

	res, err := e.Submit(id, side, price, qty)
	switch {
	case errors.Is(err, orderbook.ErrDuplicateID):
		fmt.Fprintln(out, "Failed to add order (ID already exists).")
		return
	case err != nil:
		fmt.Fprintf(out, "Failed to add order: %v.\n", err)
		return
	}
	fmt.Fprintln(out, "Order added successfully.")
	printFills(out, res.Fills)
}

// replCancel handles `cancel <id>`.
func replCancel(e *engine.Engine, fields []string, out io.Writer) {
	if len(fields) != 2 {
		fmt.Fprintln(out, "Usage: cancel <id>")
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid order id %q.\n", fields[1])
		return
	}
	if _, err := e.Cancel(id); err != nil {
		fmt.Fprintln(out, "Order not found.")
		return
	}
	fmt.Fprintln(out, "Order cancelled successfully.")
}

// replModify handles `modify <id> <price> <qty>`.
func replModify(e *engine.Engine, fields []string, out io.Writer) {
	if len(fields) != 4 {
		fmt.Fprintln(out, "Usage: modify <id> <price> <qty>")
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid order id %q.\n", fields[1])
		return
	}
	price, err := domain.ParsePrice(fields[2])
	if err != nil {
		fmt.Fprintf(out, "Invalid price %q: %v.\n", fields[2], err)
		return
	}
	qty, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		fmt.Fprintf(out, "Invalid quantity %q.\n", fields[3])
		return
	}

	res, err := e.Modify(id, price, qty)
	switch {
	case errors.Is(err, orderbook.ErrNotFound):
		fmt.Fprintln(out, "Order not found.")
		return
	case err != nil:
		fmt.Fprintf(out, "Failed to modify order: %v.\n", err)
		return
	}
	fmt.Fprintln(out, "Order modified successfully.")
	printFills(out, res.Fills)
}

func printFills(out io.Writer, fills []*domain.Fill) {
	for _, f := range fills {
		fmt.Fprintf(out, "Fill: %d @ %s (maker %d, taker %d)\n",
			f.Quantity, domain.FormatPrice(f.Price), f.MakerID, f.TakerID)
	}
}

// parseSide accepts the numeric codes used in CSV files as well as the
// side names.
func parseSide(tok string) (domain.Side, error) {
	if code, err := strconv.Atoi(tok); err == nil {
		if side, ok := domain.SideFromCode(code); ok {
			return side, nil
		}
		return "", fmt.Errorf("invalid side %q: want 0 (buy) or 1 (sell)", tok)
	}
	side := domain.Side(strings.ToLower(tok))
	if !side.Valid() {
		return "", fmt.Errorf("invalid side %q: want 0, 1, buy or sell", tok)
	}
	return side, nil
}
