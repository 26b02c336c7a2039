package rugsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"RugPull/internal/domain/models"
	drepo "RugPull/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements an EventStream backed by the game's WebSocket feed.
type Client struct {
	websocketURL   string
	channel        string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new game feed EventStream.
func New(websocketURL, channel string, reconnectDelay, pingInterval time.Duration) drepo.EventStream {
	return &Client{
		websocketURL:   websocketURL,
		channel:        channel,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("rugsfeed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("rugsfeed: connected")
	return nil
}

// Subscribe subscribes to the round event channel.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("rugsfeed not connected")
	}
	msg := map[string]string{"type": "subscribe", "channel": c.channel}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", c.channel, err)
	}
	log.Printf("rugsfeed: subscribed %s", c.channel)
	return nil
}

// Feed frame shapes. Tick frames arrive every 250ms while a round is
// live; gameStateUpdate frames bracket the round.
type feedFrame struct {
	Type      string  `json:"type"`
	GameID    string  `json:"gameId"`
	TickCount int     `json:"tickCount"`
	Price     float64 `json:"price"`
	PeakPrice float64 `json:"peakPrice"`
	Active    bool    `json:"active"`
	Rugged    bool    `json:"rugged"`
}

// Read streams round events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.RoundEvent, <-chan error) {
	events := make(chan *models.RoundEvent, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(events)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("rugsfeed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("rugsfeed read: %w", err)
					return
				}
				var f feedFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-event frames
					continue
				}
				ev := translate(&f)
				if ev == nil {
					continue
				}
				select {
				case events <- ev:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return events, errs
}

// translate maps a raw feed frame onto the round event model.
func translate(f *feedFrame) *models.RoundEvent {
	if f.GameID == "" {
		return nil
	}
	now := time.Now()
	switch f.Type {
	case "gameStateUpdate":
		if f.Rugged {
			return &models.RoundEvent{
				Type:       models.EventRoundEnd,
				RoundID:    f.GameID,
				FinalTick:  f.TickCount,
				FinalPrice: f.Price,
				ReceivedAt: now,
			}
		}
		if f.Active && f.TickCount == 0 {
			return &models.RoundEvent{
				Type:       models.EventRoundStart,
				RoundID:    f.GameID,
				ReceivedAt: now,
			}
		}
		return nil
	case "tick":
		return &models.RoundEvent{
			Type:       models.EventTick,
			RoundID:    f.GameID,
			Tick:       f.TickCount,
			Price:      f.Price,
			PeakPrice:  f.PeakPrice,
			ReceivedAt: now,
		}
	default:
		return nil
	}
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
