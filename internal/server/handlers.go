package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/rickgao/pushevent/internal/connection"
	"github.com/rickgao/pushevent/internal/dispatch"
	"github.com/rickgao/pushevent/internal/event"
	"github.com/rickgao/pushevent/internal/registry"
	"github.com/rickgao/pushevent/internal/version"
)

const (
	maxPublishBody  = 1 << 20
	registerTimeout = 5 * time.Second
)

// handleSubscribe upgrades the request and subscribes the socket to the
// request path until either side hangs up.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if !s.validatePath(w, path) {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "path", path, "error", err)
		return
	}

	s.sessions.Add(1)
	defer s.sessions.Done()
	s.metrics.Sessions.Inc()
	defer s.metrics.Sessions.Dec()

	outbox := connection.NewOutbox(s.cfg.OutboxSize)
	defer outbox.Close()

	h := connection.NewHandle(path, outbox)
	logger := s.logger.With("conn_id", h.ID(), "path", path, "remote", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(s.sessionCtx, registerTimeout)
	err = s.dispatcher.ConnectAndWait(ctx, h)
	cancel()

	switch {
	case errors.Is(err, registry.ErrDuplicateConnection):
		// The ID belongs to someone else; disconnecting it would drop them.
		s.reject(conn, websocket.ClosePolicyViolation, "duplicate connection")
		return
	case errors.Is(err, dispatch.ErrQueueClosed):
		s.reject(conn, websocket.CloseGoingAway, "server shutting down")
		return
	case err != nil:
		// The connect may still be queued; make sure it is undone.
		s.dispatcher.Disconnect(h.ID())
		s.reject(conn, websocket.CloseTryAgainLater, "registration timed out")
		logger.Warn("subscriber registration failed", "error", err)
		return
	}

	logger.Info("subscriber connected")

	session := connection.NewSession(s.cfg.Session, conn, outbox, logger)
	serveErr := session.Serve(s.sessionCtx)

	if err := s.dispatcher.Disconnect(h.ID()); err != nil && !errors.Is(err, dispatch.ErrQueueClosed) {
		logger.Warn("failed to enqueue disconnect", "error", err)
	}

	if serveErr != nil {
		logger.Info("subscriber disconnected", "error", serveErr)
		return
	}
	logger.Info("subscriber disconnected")
}

// reject sends a close frame and drops the connection.
func (s *Server) reject(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(s.cfg.Session.WriteTimeout)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	conn.Close()
}

// handlePublish publishes the request body to the request path.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	code := s.publish(w, r)
	s.metrics.PublishRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) int {
	path := r.URL.Path
	if !s.validatePath(w, path) {
		return http.StatusBadRequest
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPublishBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Error: request body too large.", http.StatusRequestEntityTooLarge)
			return http.StatusRequestEntityTooLarge
		}
		sendBadRequestError(w, "Unable to read POST body.")
		return http.StatusBadRequest
	}
	if !utf8.Valid(body) {
		sendBadRequestError(w, "Message must be valid Unicode (UTF-8).")
		return http.StatusBadRequest
	}

	if err := s.producer.Send(event.New(path, event.Text(body))); err != nil {
		s.logger.Warn("publish rejected", "path", path, "error", err)
		http.Error(w, "Error: dispatcher unavailable.", http.StatusServiceUnavailable)
		return http.StatusServiceUnavailable
	}

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("OK\n"))
	return http.StatusAccepted
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status     string                 `json:"status"`
	Version    string                 `json:"version"`
	Components map[string]interface{} `json:"components"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.dispatcher.Stats()

	health := healthResponse{
		Status:  "healthy",
		Version: version.String(),
		Components: map[string]interface{}{
			"dispatcher": map[string]interface{}{
				"subscribers":       stats.Subscribers,
				"paths":             stats.Paths,
				"messages_received": stats.MessagesReceived,
				"events_published":  stats.EventsPublished,
				"deliveries":        stats.Deliveries,
				"delivery_failures": stats.DeliveryFailures,
				"queue_depth":       stats.Queue.Count,
				"queue_high_water":  stats.Queue.HighWater,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// validatePath writes a 400 and returns false if path is not an acceptable
// resource path.
func (s *Server) validatePath(w http.ResponseWriter, path string) bool {
	if !utf8.ValidString(path) {
		sendBadRequestError(w, "Path must be valid Unicode (UTF-8).")
		return false
	}
	pathLen := utf8.RuneCountInString(path)
	if pathLen < 1 || pathLen > s.cfg.MaxPathLength {
		sendBadRequestError(w, fmt.Sprintf(
			"Path length must be 1-%d Unicode characters (UTF-8).", s.cfg.MaxPathLength))
		return false
	}
	return true
}

func sendBadRequestError(w http.ResponseWriter, str string) {
	http.Error(w, fmt.Sprintf("Error: bad request. %s", str), http.StatusBadRequest)
}
