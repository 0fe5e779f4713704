// Package loader reads order flow from CSV text and feeds it into a book.
//
// The format is one order per line, `id,price,quantity,side`, side encoded
// as 0 (buy) or 1 (sell). An optional header row is recognized by its id
// field not parsing as an unsigned integer. Bad rows are skipped and
// counted; they never abort the rest of the file.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nathanyu/orderbook/internal/domain"
)

// ErrMalformedRecord marks a row that failed to parse. Such rows are counted
// and skipped; the error never aborts a load.
var ErrMalformedRecord = errors.New("malformed record")

// Submitter is the sink for parsed orders. *orderbook.OrderBook and
// *engine.Engine both satisfy it.
type Submitter interface {
	Submit(id uint64, side domain.Side, price, quantity int64) (*domain.SubmitResult, error)
}

// Result reports what a load run did.
type Result struct {
	Submitted int   // orders accepted by the book
	Skipped   int   // malformed or rejected rows
	Fills     int64 // fills triggered while loading
}

// LoadFile opens path and streams its rows into s.
func LoadFile(path string, s Submitter) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open orders file: %w", err)
	}
	defer f.Close()
	return Load(f, s)
}

// Load parses rows from r and submits them in file order. Blank lines are
// ignored. A read error aborts the run and returns the partial result.
func Load(r io.Reader, s Submitter) (*Result, error) {
	res := &Result{}
	sc := bufio.NewScanner(r)
	lineNo := 0
	first := true
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if first {
			first = false
			if _, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64); err != nil {
				continue // header row
			}
		}

		id, side, price, qty, err := parseRow(fields)
		if err != nil {
			log.Printf("[loader] line %d: %v", lineNo, err)
			res.Skipped++
			continue
		}
		sub, err := s.Submit(id, side, price, qty)
		if err != nil {
			log.Printf("[loader] line %d: %v", lineNo, err)
			res.Skipped++
			continue
		}
		res.Submitted++
		res.Fills += int64(len(sub.Fills))
	}
	if err := sc.Err(); err != nil {
		return res, fmt.Errorf("read orders: %w", err)
	}
	return res, nil
}

func parseRow(fields []string) (uint64, domain.Side, int64, int64, error) {
	if len(fields) != 4 {
		return 0, "", 0, 0, malformed("want 4 fields, got %d", len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return 0, "", 0, 0, malformed("order id %q: %v", fields[0], err)
	}
	price, err := domain.ParsePrice(fields[1])
	if err != nil {
		return 0, "", 0, 0, malformed("%v", err)
	}
	qty, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return 0, "", 0, 0, malformed("quantity %q: %v", fields[2], err)
	}
	if qty <= 0 {
		return 0, "", 0, 0, malformed("quantity %q: must be positive", fields[2])
	}
	code, err := strconv.Atoi(fields[3])
	if err != nil {
		return 0, "", 0, 0, malformed("side %q: %v", fields[3], err)
	}
	side, ok := domain.SideFromCode(code)
	if !ok {
		return 0, "", 0, 0, malformed("side %q: want 0 (buy) or 1 (sell)", fields[3])
	}
	return id, side, price, qty, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedRecord, fmt.Sprintf(format, args...))
}
