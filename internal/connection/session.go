package connection

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Session pumps an Outbox onto one accepted WebSocket connection.
type Session struct {
	cfg    SessionConfig
	logger *slog.Logger

	conn   *websocket.Conn
	outbox *Outbox
}

// NewSession wraps an upgraded connection. The session owns conn from here on.
func NewSession(cfg SessionConfig, conn *websocket.Conn, outbox *Outbox, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		outbox: outbox,
	}
}

// Serve runs until the subscriber goes away, the outbox closes, or ctx is done.
// The connection is closed before Serve returns. A normal client close yields nil.
func (s *Session) Serve(ctx context.Context) error {
	defer s.conn.Close()

	if s.cfg.MaxMessageSize > 0 {
		s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	}
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop()
	}()

	return s.writeLoop(ctx, readErr)
}

// readLoop discards client frames; it exists to process control frames and
// notice when the client hangs up.
func (s *Session) readLoop() error {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
	}
}

// writeLoop is the only writer of data frames on the connection.
func (s *Session) writeLoop(ctx context.Context, readErr <-chan error) error {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.writeClose(websocket.CloseGoingAway, "server shutting down")
			return nil

		case err := <-readErr:
			return err

		case text, ok := <-s.outbox.Messages():
			if !ok {
				if s.outbox.Overflowed() {
					s.writeClose(websocket.CloseTryAgainLater, "subscriber too slow")
					return ErrOutboxFull
				}
				s.writeClose(websocket.CloseNormalClosure, "")
				return nil
			}

			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				return fmt.Errorf("write message: %w", err)
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return fmt.Errorf("write ping: %w", err)
			}
		}
	}
}

func (s *Session) writeClose(code int, reason string) {
	deadline := time.Now().Add(s.cfg.WriteTimeout)
	if err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
		s.logger.Debug("failed to send close frame", "error", err)
	}
}
