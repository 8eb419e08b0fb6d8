package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mounirlabaied/QPAS/internal/domain"
)

// StreamConfig configures the streaming client's connection behavior.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential backoff between attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns default streaming configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// BarUpdate is a single streamed bar for one instrument.
type BarUpdate struct {
	InstrumentID int
	Symbol       string
	Bar          domain.OHLCBar
}

// StreamClient receives live OHLC bars over a WebSocket feed. It
// reconnects with exponential backoff and resubscribes to all previously
// requested symbols after a reconnect.
type StreamClient struct {
	endpoint string
	config   StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// updates carries incoming bars; a large buffer absorbs bursts and
	// blocking sends ensure no bar loss.
	updates chan BarUpdate

	// symbols holds every subscribed symbol for resubscription.
	symbols   map[string]struct{}
	symbolsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewStreamClient creates a streaming client and connects to the
// endpoint.
func NewStreamClient(ctx context.Context, endpoint string, config *StreamConfig) (*StreamClient, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	c := &StreamClient{
		endpoint: endpoint,
		config:   cfg,
		updates:  make(chan BarUpdate, 10000),
		symbols:  make(map[string]struct{}),
		done:     make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Updates returns the channel of streamed bars. It is closed on Close.
func (c *StreamClient) Updates() <-chan BarUpdate {
	return c.updates
}

// Subscribe requests bar updates for the given symbols. Subscriptions
// survive reconnects.
func (c *StreamClient) Subscribe(symbols ...string) error {
	if c.closed.Load() {
		return fmt.Errorf("client closed")
	}
	if len(symbols) == 0 {
		return nil
	}

	c.symbolsMu.Lock()
	for _, s := range symbols {
		c.symbols[s] = struct{}{}
	}
	c.symbolsMu.Unlock()

	return c.writeSubscribe(symbols)
}

// Close shuts down the connection and closes the updates channel.
func (c *StreamClient) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.updates)
	return nil
}

func (c *StreamClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

func (c *StreamClient) writeSubscribe(symbols []string) error {
	req := streamRequest{
		Type:    "subscribe",
		Symbols: symbols,
	}

	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// readLoop reads messages and dispatches bars until Close.
func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// reconnect re-establishes the connection and resubscribes.
func (c *StreamClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	if c.closed.Load() {
		return
	}

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error.
		return
	}

	c.symbolsMu.Lock()
	symbols := make([]string, 0, len(c.symbols))
	for s := range c.symbols {
		symbols = append(symbols, s)
	}
	c.symbolsMu.Unlock()

	if len(symbols) > 0 {
		c.writeSubscribe(symbols)
	}
}

func (c *StreamClient) handleMessage(message []byte) {
	var msg streamMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Type != "bar" || msg.Bar == nil {
		return
	}

	update := BarUpdate{
		InstrumentID: msg.InstrumentID,
		Symbol:       msg.Symbol,
		Bar: domain.OHLCBar{
			DT:     time.UnixMilli(msg.Bar.TimeMs).UTC(),
			Open:   msg.Bar.Open,
			High:   msg.Bar.High,
			Low:    msg.Bar.Low,
			Close:  msg.Bar.Close,
			Volume: msg.Bar.Volume,
		},
	}

	// Block until we can send, never drop bars.
	select {
	case c.updates <- update:
	case <-c.done:
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				// On write failure the reader notices and reconnects.
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// Wire message types.

type streamRequest struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

type streamMessage struct {
	Type         string     `json:"type"`
	Symbol       string     `json:"symbol"`
	InstrumentID int        `json:"instrument_id"`
	Bar          *barFields `json:"bar"`
}

type barFields struct {
	TimeMs int64   `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}
