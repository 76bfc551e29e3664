package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// GameUpdate is a live status message pushed by the feed stream
type GameUpdate struct {
	GameID     string `json:"gameId"`
	Status     string `json:"status"`
	HomePoints *int   `json:"homeScore,omitempty"`
	AwayPoints *int   `json:"awayScore,omitempty"`
}

// UpdateHandler is called for each game update received from the stream
type UpdateHandler func(update GameUpdate) error

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// StreamClient maintains a WebSocket connection to the feed's live game
// stream and dispatches status updates to registered handlers.
type StreamClient struct {
	streamURL       string
	apiKey          string
	conn            *websocket.Conn
	mu              sync.RWMutex
	isConnected     bool
	handlers        []UpdateHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *log.Logger
}

// NewStreamClient creates a new stream client
func NewStreamClient(streamURL, apiKey string, logger *log.Logger) *StreamClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]UpdateHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// AddHandler registers an update handler
func (s *StreamClient) AddHandler(handler UpdateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Connect establishes the WebSocket connection and subscribes to game updates
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.Printf("Connecting to stream: %s", s.streamURL)

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	subscribe := map[string]interface{}{
		"op":     "subscribe",
		"apiKey": s.apiKey,
		"topics": []string{"game_status"},
	}
	if err := conn.WriteJSON(subscribe); err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	s.logger.Printf("Connected to stream successfully")

	go s.readMessages()

	return nil
}

// Run connects and keeps the stream alive with exponential backoff until the
// context is cancelled or retries are exhausted.
func (s *StreamClient) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := s.Connect(ctx); err != nil {
			retries++
			if s.reconnectConfig.MaxRetries > 0 && retries > s.reconnectConfig.MaxRetries {
				return fmt.Errorf("stream reconnect retries exhausted: %w", err)
			}

			s.logger.Printf("Stream connect failed (attempt %d): %v, retrying in %s", retries, err, backoff)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
			if backoff > s.reconnectConfig.MaxBackoff {
				backoff = s.reconnectConfig.MaxBackoff
			}
			continue
		}

		// Connected; reset backoff and wait for disconnect or cancellation.
		retries = 0
		backoff = s.reconnectConfig.InitialBackoff

		ticker := time.NewTicker(time.Second)
	waitLoop:
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				s.Close()
				return ctx.Err()
			case <-ticker.C:
				if !s.IsConnected() {
					break waitLoop
				}
			}
		}
		ticker.Stop()

		s.logger.Printf("Stream disconnected, reconnecting")
	}
}

// readMessages reads updates from the WebSocket connection
func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var raw json.RawMessage
		err := s.conn.ReadJSON(&raw)
		if err != nil {
			s.logger.Printf("Error reading stream message: %v", err)
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var update GameUpdate
		if err := json.Unmarshal(raw, &update); err != nil || update.GameID == "" {
			// Heartbeats and subscription acks carry no game ID.
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(update); err != nil {
				s.logger.Printf("Stream handler error for game %s: %v", update.GameID, err)
			}
		}
	}
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.isConnected = false
	return err
}
