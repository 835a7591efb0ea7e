package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"equity-lab/internal/observability"
)

// FeedClientConfig configures WebSocket feed client behavior.
type FeedClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed client configuration.
func DefaultFeedConfig() FeedClientConfig {
	return FeedClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// subscribeRequest is the feed's subscribe operation. The server starts
// pushing deal and snapshot messages for the listed accounts.
type subscribeRequest struct {
	Op       string   `json:"op"`
	Accounts []string `json:"accounts"`
}

// FeedClient implements FeedSource over gorilla/websocket. It reconnects
// with exponential backoff and resubscribes to the accounts it was
// watching before the drop.
type FeedClient struct {
	endpoint string
	config   FeedClientConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// accounts subscribed so far, replayed after reconnect
	accounts   []string
	accountsMu sync.Mutex

	out    chan FeedMessage
	outSet atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewFeedClient creates a new feed client and connects to the endpoint.
func NewFeedClient(ctx context.Context, endpoint string, config *FeedClientConfig, logger *log.Logger) (*FeedClient, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	c := &FeedClient{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		out:      make(chan FeedMessage, 10000),
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

// Compile-time interface check.
var _ FeedSource = (*FeedClient)(nil)

// connect establishes the WebSocket connection.
func (c *FeedClient) connect(ctx context.Context) error {
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

// Subscribe asks the feed to push events for the given accounts. All
// subscriptions share one output channel; messages carry the account id.
func (c *FeedClient) Subscribe(ctx context.Context, accounts []string) (<-chan FeedMessage, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	if err := c.writeSubscribe(accounts); err != nil {
		return nil, err
	}

	c.accountsMu.Lock()
	c.accounts = append(c.accounts, accounts...)
	c.accountsMu.Unlock()

	c.outSet.Store(true)
	return c.out, nil
}

// writeSubscribe sends the subscribe operation on the current connection.
func (c *FeedClient) writeSubscribe(accounts []string) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	req := subscribeRequest{Op: "subscribe", Accounts: accounts}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close closes the connection and the output channel.
func (c *FeedClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
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

	if c.outSet.Load() {
		close(c.out)
	}
	return nil
}

// readLoop reads messages and dispatches them to the output channel.
func (c *FeedClient) readLoop() {
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

		// Reset delay on successful read
		reconnectDelay = c.config.ReconnectDelay

		c.handleMessage(message)
	}
}

// handleMessage decodes a raw message and forwards it.
func (c *FeedClient) handleMessage(raw []byte) {
	var msg FeedMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.logger.Printf("[feed] dropping undecodable message: %v", err)
		observability.RecordEventError("decode")
		return
	}

	switch msg.Type {
	case "deal":
		if msg.Deal == nil {
			observability.RecordEventError("missing_deal_payload")
			return
		}
	case "snapshot":
		if msg.Snapshot == nil {
			observability.RecordEventError("missing_snapshot_payload")
			return
		}
	default:
		// Feed control frames (acks, heartbeats) are not for us.
		return
	}

	// Blocking send: the buffer absorbs bursts, backpressure beyond that
	// is preferable to losing events.
	select {
	case c.out <- msg:
	case <-c.done:
	}
}

// reconnect attempts to reconnect and resubscribe.
func (c *FeedClient) reconnect(delay time.Duration) {
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
		// Reconnect failed, will retry on next read error
		return
	}

	observability.RecordFeedReconnect()
	c.logger.Println("[feed] reconnected")

	c.accountsMu.Lock()
	accounts := make([]string, len(c.accounts))
	copy(accounts, c.accounts)
	c.accountsMu.Unlock()

	if len(accounts) > 0 {
		if err := c.writeSubscribe(accounts); err != nil {
			c.logger.Printf("[feed] resubscribe failed: %v", err)
		}
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *FeedClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			if conn != nil {
				conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.logger.Printf("[feed] ping failed: %v", err)
				}
			}
			c.connMu.Unlock()
		}
	}
}
