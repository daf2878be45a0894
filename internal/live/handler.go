package live

import (
	"context"
	"log/slog"
	"net/http"

	"pingboard/internal/pinger"

	"github.com/gorilla/websocket"
)

// Gauge tracks the number of open sessions; prometheus.Gauge satisfies it
type Gauge interface {
	Inc()
	Dec()
}

// Handler upgrades requests to live sessions. Every session samples the
// round trip to its own page over the socket.
type Handler struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	options  []pinger.Option
	sessions Gauge
}

// HandlerOption configures a Handler
type HandlerOption func(*Handler)

// WithControllerOptions applies opts to every session's controller
func WithControllerOptions(opts ...pinger.Option) HandlerOption {
	return func(h *Handler) {
		h.options = append(h.options, opts...)
	}
}

// WithSessionGauge reports open sessions to g
func WithSessionGauge(g Gauge) HandlerOption {
	return func(h *Handler) {
		if g != nil {
			h.sessions = g
		}
	}
}

// NewHandler creates a live session handler
func NewHandler(logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		logger: logger.With("component", "live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: nopGauge{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := newSession(conn, h.logger, h.options...)
	h.sessions.Inc()
	defer h.sessions.Dec()

	session.logger.Info("live session opened", "remote", r.RemoteAddr)
	session.run(ctx)
	session.logger.Info("live session closed")
}

type nopGauge struct{}

func (nopGauge) Inc() {}
func (nopGauge) Dec() {}
