// Package session runs one WebSocket connection to the game server: one
// reader feeding the dispatcher and one writer draining outbound packets.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/dispatcher"
	"github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/pkg/packet"
	"golang.org/x/sync/errgroup"
)

// Config holds connection settings.
type Config struct {
	Host         string
	Port         int
	Nickname     string
	JoinCode     string
	DialAttempts int
	DialBackoff  time.Duration
}

// Dispatcher routes inbound events.
type Dispatcher interface {
	Dispatch(ctx context.Context, e dispatcher.Event) error
}

// Session is a connected client. Send is safe for concurrent use.
type Session struct {
	conn   *connection
	logger *slog.Logger
}

// Dial connects to the server described by cfg, retrying with backoff.
func Dial(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rawURL, err := serverURL(cfg)
	if err != nil {
		return nil, err
	}
	return DialURL(ctx, rawURL, cfg.DialAttempts, cfg.DialBackoff, logger)
}

// DialURL connects to an explicit ws:// URL.
func DialURL(ctx context.Context, rawURL string, attempts int, backoff time.Duration, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dialWithRetry(ctx, rawURL, attempts, backoff, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to game server", "url", rawURL)
	return &Session{conn: newConnection(conn, logger), logger: logger}, nil
}

// Send queues an envelope for the writer.
func (s *Session) Send(e packet.Envelope) error {
	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", e.Type, err)
	}
	if err := s.conn.send(data); err != nil {
		return fmt.Errorf("send %s: %w", e.Type, err)
	}
	return nil
}

// Run reads packets and hands them to d until the server closes the
// connection, ctx is cancelled or an I/O error occurs. A graceful end
// returns nil. Handler errors are logged and never stop the session.
func (s *Session) Run(ctx context.Context, d Dispatcher) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.conn.writeLoop(gctx)
	})
	g.Go(func() error {
		return s.conn.readLoop(func(frame []byte) {
			s.handleFrame(gctx, d, frame)
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.conn.close()
	})

	err := g.Wait()
	if errors.Is(err, errClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Session) handleFrame(ctx context.Context, d Dispatcher, frame []byte) {
	received := time.Now()
	env, err := packet.Unmarshal(frame)
	if err != nil {
		s.logger.Warn("Dropping malformed frame", "error", err, "bytes", len(frame))
		return
	}
	if err := d.Dispatch(ctx, dispatcher.FromEnvelope(env, received)); err != nil {
		s.logger.Error("Packet handling failed", "packet", env.Type, "error", err)
	}
}

// Close sends a close frame and stops Run.
func (s *Session) Close() error {
	return s.conn.close()
}
