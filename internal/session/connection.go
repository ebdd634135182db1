package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	sendChSize = 64
	maxBackoff = 30 * time.Second
	writeWait  = 5 * time.Second
	closeWait  = time.Second
)

// errClosed ends the read and write loops on a graceful shutdown.
var errClosed = errors.New("connection closed")

// connection owns a WebSocket with a single write goroutine. Only writeLoop
// writes data frames; close writes the close frame under the same mutex.
type connection struct {
	mu     sync.Mutex
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{}
	closed bool

	logger *slog.Logger
}

func newConnection(conn *ws.Conn, logger *slog.Logger) *connection {
	return &connection{
		conn:   conn,
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// serverURL builds ws://host:port/?nickname=...&playerType=hackathonBot.
func serverURL(cfg Config) (string, error) {
	if cfg.Host == "" {
		return "", errors.New("server host is empty")
	}
	if cfg.Nickname == "" {
		return "", errors.New("nickname is empty")
	}
	u := url.URL{Scheme: "ws", Host: cfg.Host + ":" + strconv.Itoa(cfg.Port), Path: "/"}
	q := u.Query()
	q.Set("nickname", cfg.Nickname)
	q.Set("playerType", "hackathonBot")
	if cfg.JoinCode != "" {
		q.Set("joinCode", cfg.JoinCode)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// dialWithRetry dials up to attempts times with exponential backoff.
func dialWithRetry(ctx context.Context, rawURL string, attempts int, backoff time.Duration, logger *slog.Logger) (*ws.Conn, error) {
	if attempts < 1 {
		attempts = 1
	}
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, resp, err := ws.DefaultDialer.DialContext(ctx, rawURL, nil)
		if err == nil {
			return conn, nil
		}
		if resp != nil {
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		lastErr = err
		logger.Warn("WebSocket dial failed", "attempt", attempt, "attempts", attempts, "error", err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return nil, fmt.Errorf("websocket dial failed after %d attempts: %w", attempts, lastErr)
}

// writeLoop drains sendCh and writes text frames. It returns on error or
// shutdown.
func (c *connection) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return errClosed
		case data := <-c.sendCh:
			c.mu.Lock()
			conn := c.conn
			if conn == nil {
				c.mu.Unlock()
				return errClosed
			}
			err := conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err == nil {
				err = conn.WriteMessage(ws.TextMessage, data)
			}
			c.mu.Unlock()
			if err != nil {
				return fmt.Errorf("websocket write: %w", err)
			}
		}
	}
}

// readLoop hands every text frame to onMessage until the connection ends.
// A normal close from either side returns errClosed.
func (c *connection) readLoop(onMessage func([]byte)) error {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return errClosed
		}

		msgType, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				return errClosed
			default:
			}
			if ws.IsCloseError(err, ws.CloseNormalClosure, ws.CloseGoingAway) {
				c.logger.Info("Server closed the connection", "reason", err)
				return errClosed
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		if msgType != ws.TextMessage {
			c.logger.Debug("Ignoring non-text frame", "type", msgType)
			continue
		}
		onMessage(message)
	}
}

// send pushes data to the write loop. It fails instead of blocking when the
// queue is full or the connection is closed.
func (c *connection) send(data []byte) error {
	select {
	case <-c.done:
		return errClosed
	default:
	}
	select {
	case c.sendCh <- data:
		return nil
	default:
		return errors.New("send queue full")
	}
}

// close sends a WebSocket close frame and stops both loops.
func (c *connection) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	conn := c.conn
	c.conn = nil

	if conn == nil {
		return nil
	}
	_ = conn.WriteControl(
		ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(closeWait),
	)
	return conn.Close()
}
