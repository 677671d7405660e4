package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"hermes_go/internal/infra"

	"github.com/gorilla/websocket"
)

// Worker maintains one long-lived trade-stream subscription for a single
// symbol and publishes every trade price into the cell. It runs isolated
// from the control surface: its only shared state is the cell.
//
// There is no in-process reconnect. On any transport error the run
// terminates and Done() is closed; the controller decides whether to start
// a fresh worker. One worker per cell at a time, enforced by the controller.
type Worker struct {
	symbol    string
	streamURL string
	cell      *Cell
	logger    *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a worker for one symbol. streamURL may be empty to use
// the production endpoint.
func NewWorker(symbol, streamURL string, cell *Cell) *Worker {
	if streamURL == "" {
		streamURL = DefaultStreamURL
	}
	return &Worker{
		symbol:    symbol,
		streamURL: streamURL,
		cell:      cell,
		logger:    slog.Default().With("module", "feed", "symbol", symbol),
		done:      make(chan struct{}),
	}
}

// Connect dials the trade stream and starts the read loop. The returned
// error covers the dial only; later transport failures close Done.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	url := w.streamURL + "/" + strings.ToLower(w.symbol) + "@trade"
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		close(w.done)
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	w.logger.Info("trade stream connected", "url", url)
	go w.readLoop(ctx, conn)
	return nil
}

// Done is closed when the worker has terminated, whether by Disconnect or
// by a transport error. The controller watches this to detect dead streams.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// readLoop owns the conn it was started with; w.conn may be nil-ed by a
// concurrent Disconnect and is never read here.
func (w *Worker) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer close(w.done)
	defer w.closeConnection()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Warn("trade stream read failed", "error", err)
			}
			return
		}
		w.handleMessage(msg)
	}
}

// handleMessage parses one inbound event and publishes its price. Malformed
// or irrelevant messages are dropped; only the transport decides liveness.
func (w *Worker) handleMessage(msg []byte) {
	var trade tradeMessage
	if err := json.Unmarshal(msg, &trade); err != nil {
		return
	}
	if trade.EventType != "trade" || trade.Price == "" {
		return
	}

	price, err := strconv.ParseFloat(trade.Price, 64)
	if err != nil || price <= 0 {
		return
	}
	w.cell.Publish(price)
	infra.MtxLastPrice.Set(price)
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

// Disconnect terminates the stream and blocks until the read loop has
// released its resources. Safe to call more than once; a restart is only
// permitted after Disconnect returns.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	<-w.done
}
