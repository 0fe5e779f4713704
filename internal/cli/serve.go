package cli

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/engine"
	"github.com/nathanyu/orderbook/internal/handler"
	"github.com/nathanyu/orderbook/internal/loader"
	"github.com/nathanyu/orderbook/internal/marketdata"
	"github.com/nathanyu/orderbook/internal/middleware"
	"github.com/nathanyu/orderbook/internal/sequencer"
)

const channelBufferSize = 4096

// simulatorIDBase keeps simulator order ids clear of CSV-loaded ids.
const simulatorIDBase = 1_000_000_000

// runServe starts the market data API around a live book. Order flow comes
// from an optional CSV preload and the built-in simulator, never from HTTP.
func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", ":8080", "market data API listen address")
	metricsAddr := fs.String("metrics-addr", ":9090", "Prometheus metrics listen address")
	loadPath := fs.String("load", "", "CSV file to load into the book before serving")
	simulate := fs.Int("simulate", 0, "random orders per second to feed the book (0 = off)")
	depth := fs.Int("depth", 10, "default depth for the orderbook endpoint")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	log.Println("Starting order book service...")

	// --- Core components ---

	eng := engine.New()
	seq := sequencer.NewSequencer(eng, channelBufferSize)
	tape := marketdata.NewTape(channelBufferSize)

	// Preload happens before the pipeline starts, as a bulk sequential
	// step; the tape only sees fills from live flow.
	if *loadPath != "" {
		res, err := loader.LoadFile(*loadPath, eng)
		if err != nil {
			log.Printf("load %s: %v", *loadPath, err)
			return 1
		}
		log.Printf("loaded %d orders from %s (%d rows skipped, %d fills)",
			res.Submitted, *loadPath, res.Skipped, res.Fills)
	}

	// --- Wire the pipeline ---
	//
	// Simulator → [OrderIn] → Sequencer → Engine
	//                             ↓
	//             Tape ← [FillOut]
	go func() {
		for event := range seq.FillOut {
			tape.FillIn <- event
		}
	}()

	seq.Start()
	tape.Start()

	simDone := make(chan struct{})
	if *simulate > 0 {
		log.Printf("simulator feeding %d orders/sec", *simulate)
		go runSimulator(seq, *simulate, simDone)
	}

	// --- HTTP servers ---

	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())

	h := handler.NewHandler(eng, tape, *depth)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    *addr,
		Handler: r,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    *metricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Printf("Metrics server listening on %s", *metricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	go func() {
		log.Printf("HTTP server listening on %s", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// --- Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	close(simDone)
	seq.Stop()
	tape.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}

	log.Println("Order book service stopped.")
	return 0
}

// runSimulator feeds random order flow into the sequencer until done
// closes. Roughly one in ten events cancels a previously submitted order.
func runSimulator(seq *sequencer.Sequencer, perSecond int, done <-chan struct{}) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	interval := time.Second / time.Duration(perSecond)
	if interval <= 0 {
		interval = time.Nanosecond // NewTicker panics on non-positive intervals
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	nextID := uint64(simulatorIDBase)
	var live []uint64
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if len(live) > 0 && rng.Intn(10) == 0 {
				idx := rng.Intn(len(live))
				id := live[idx]
				live = append(live[:idx], live[idx+1:]...)
				select {
				case seq.OrderIn <- &domain.OrderEvent{Action: domain.OrderActionCancel, ID: id}:
				case <-done:
					return
				}
				continue
			}

			nextID++
			side, price, qty := randomOrder(rng)
			select {
			case seq.OrderIn <- &domain.OrderEvent{
				Action:   domain.OrderActionSubmit,
				ID:       nextID,
				Side:     side,
				Price:    price,
				Quantity: qty,
			}:
			case <-done:
				return
			}
			live = append(live, nextID)
			if len(live) > 1024 {
				live = live[1:]
			}
		}
	}
}
