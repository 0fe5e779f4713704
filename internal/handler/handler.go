package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathanyu/orderbook/internal/domain"
	"github.com/nathanyu/orderbook/internal/engine"
	"github.com/nathanyu/orderbook/internal/marketdata"
)

// Handler serves the read-only market data API. Order flow never arrives
// over HTTP; the book is fed by the loader, the CLI, or the simulator.
type Handler struct {
	engine       *engine.Engine
	tape         *marketdata.Tape
	defaultDepth int
}

// NewHandler creates a new Handler. defaultDepth is the snapshot depth used
// when the orderbook endpoint gets no depth parameter.
func NewHandler(e *engine.Engine, tape *marketdata.Tape, defaultDepth int) *Handler {
	return &Handler{
		engine:       e,
		tape:         tape,
		defaultDepth: defaultDepth,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	{
		v1.GET("/marketdata/orderbook", h.GetOrderBook)
		v1.GET("/marketdata/trades", h.GetTrades)
		v1.GET("/stats", h.GetStats)
	}
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "orderbook",
	})
}

// LevelView is one aggregated price level rendered for JSON.
type LevelView struct {
	Price    string `json:"price"`
	Quantity int64  `json:"quantity"`
	Orders   int    `json:"orders"`
}

// BookView is a depth snapshot rendered for JSON.
type BookView struct {
	Bids  []LevelView `json:"bids"`
	Asks  []LevelView `json:"asks"`
	Taken time.Time   `json:"taken"`
}

// GetOrderBook handles GET /v1/marketdata/orderbook.
func (h *Handler) GetOrderBook(c *gin.Context) {
	depthStr := c.DefaultQuery("depth", strconv.Itoa(h.defaultDepth))
	depth, err := strconv.Atoi(depthStr)
	if err != nil || depth <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "depth must be a positive integer"})
		return
	}

	snap := h.engine.Snapshot(depth)
	c.JSON(http.StatusOK, BookView{
		Bids:  levelViews(snap.Bids),
		Asks:  levelViews(snap.Asks),
		Taken: snap.Taken,
	})
}

func levelViews(levels []domain.PriceLevel) []LevelView {
	out := make([]LevelView, len(levels))
	for i, lv := range levels {
		out[i] = LevelView{
			Price:    domain.FormatPrice(lv.Price),
			Quantity: lv.Quantity,
			Orders:   lv.Orders,
		}
	}
	return out
}

// TradeView is one fill rendered for JSON.
type TradeView struct {
	ExecID    string    `json:"exec_id"`
	MakerID   uint64    `json:"maker_id"`
	TakerID   uint64    `json:"taker_id"`
	Price     string    `json:"price"`
	Quantity  int64     `json:"quantity"`
	TakerSide string    `json:"taker_side"`
	Sequence  uint64    `json:"sequence,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// GetTrades handles GET /v1/marketdata/trades. Newest trades come first.
func (h *Handler) GetTrades(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	fills := h.tape.Recent(limit)
	out := make([]TradeView, len(fills))
	for i, f := range fills {
		out[i] = TradeView{
			ExecID:    f.ExecID,
			MakerID:   f.MakerID,
			TakerID:   f.TakerID,
			Price:     domain.FormatPrice(f.Price),
			Quantity:  f.Quantity,
			TakerSide: string(f.TakerSide),
			Sequence:  f.Sequence,
			Timestamp: f.Timestamp,
		}
	}
	c.JSON(http.StatusOK, out)
}

// StatsView is the book's lifetime counters rendered for JSON.
type StatsView struct {
	Submitted  int64  `json:"submitted"`
	Rejected   int64  `json:"rejected"`
	Cancelled  int64  `json:"cancelled"`
	Fills      int64  `json:"fills"`
	Volume     int64  `json:"volume"`
	LiveOrders int    `json:"live_orders"`
	BidLevels  int    `json:"bid_levels"`
	AskLevels  int    `json:"ask_levels"`
	BidOrders  int    `json:"bid_orders"`
	AskOrders  int    `json:"ask_orders"`
	BestBid    string `json:"best_bid,omitempty"`
	BestAsk    string `json:"best_ask,omitempty"`
	LastPrice  string `json:"last_price,omitempty"`
}

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(c *gin.Context) {
	st := h.engine.Stats()
	view := StatsView{
		Submitted:  st.Submitted,
		Rejected:   st.Rejected,
		Cancelled:  st.Cancelled,
		Fills:      st.Fills,
		Volume:     st.Volume,
		LiveOrders: st.LiveOrders,
		BidLevels:  st.BidLevels,
		AskLevels:  st.AskLevels,
		BidOrders:  st.BidOrders,
		AskOrders:  st.AskOrders,
	}
	if st.BestBid > 0 {
		view.BestBid = domain.FormatPrice(st.BestBid)
	}
	if st.BestAsk > 0 {
		view.BestAsk = domain.FormatPrice(st.BestAsk)
	}
	if last, ok := h.tape.LastPrice(); ok {
		view.LastPrice = domain.FormatPrice(last)
	}
	c.JSON(http.StatusOK, view)
}
