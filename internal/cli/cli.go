// Package cli implements the orderbook command surface: one-shot commands
// over a fresh book, an interactive mode, and a serve mode exposing market
// data over HTTP.
package cli

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/nathanyu/orderbook/internal/engine"
	"github.com/nathanyu/orderbook/internal/loader"
)

// Run executes one command and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return 0
	}

	eng := engine.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	switch args[0] {
	case "load":
		if len(args) < 2 {
			printUsage(stdout)
			return 1
		}
		return cmdLoad(stdout, stderr, eng, args[1])

	case "generate":
		count, ok := parseCount(stdout, stderr, args)
		if !ok {
			return 1
		}
		generateOrders(stdout, eng, count, rng)
		renderSnapshot(stdout, eng.Orders())
		return 0

	case "benchmark":
		count, ok := parseCount(stdout, stderr, args)
		if !ok {
			return 1
		}
		runBenchmark(stdout, eng, count, rng)
		return 0

	case "snapshot":
		if len(args) >= 2 {
			if err := writeSnapshotFile(args[1], eng.Orders()); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 1
			}
			fmt.Fprintf(stdout, "Snapshot saved to %s\n", args[1])
			return 0
		}
		renderSnapshot(stdout, eng.Orders())
		return 0

	case "stats":
		renderStats(stdout, eng.Stats())
		return 0

	case "interactive":
		runREPL(eng, stdin, stdout)
		return 0

	case "serve":
		return runServe(args[1:], stderr)

	default:
		printUsage(stdout)
		return 1
	}
}

func cmdLoad(stdout, stderr io.Writer, eng *engine.Engine, path string) int {
	fmt.Fprintf(stdout, "Loading orders from %s...\n", path)

	start := time.Now()
	res, err := loader.LoadFile(path, eng)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "CSV loading took %d microseconds\n", time.Since(start).Microseconds())
	fmt.Fprintf(stdout, "Loaded %d orders (%d rows skipped).\n", res.Submitted, res.Skipped)

	renderSnapshot(stdout, eng.Orders())
	return 0
}

func parseCount(stdout, stderr io.Writer, args []string) (int, bool) {
	if len(args) < 2 {
		printUsage(stdout)
		return 0, false
	}
	count, err := strconv.Atoi(args[1])
	if err != nil || count <= 0 {
		fmt.Fprintf(stderr, "Error: invalid count %q\n", args[1])
		return 0, false
	}
	return count, true
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Limit Order Book - single-instrument matching engine")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  orderbook <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  load <filename>      Load orders from a CSV file")
	fmt.Fprintln(w, "  generate <count>     Generate random orders")
	fmt.Fprintln(w, "  benchmark <count>    Run a performance benchmark")
	fmt.Fprintln(w, "  snapshot [filename]  Print a snapshot (optionally to a file)")
	fmt.Fprintln(w, "  stats                Print book statistics")
	fmt.Fprintln(w, "  interactive          Start interactive mode")
	fmt.Fprintln(w, "  serve [flags]        Serve the market data API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  orderbook load data/ticks.csv")
	fmt.Fprintln(w, "  orderbook generate 1000")
	fmt.Fprintln(w, "  orderbook benchmark 10000")
	fmt.Fprintln(w, "  orderbook serve -addr :8080 -simulate 50")
}
