package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"pingboard/internal/pinger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// ErrSessionClosed is returned by Ping once the page has gone away
var ErrSessionClosed = errors.New("live session closed")

// Session binds one page's elements to its own controller. The socket is the
// attachment point: when it closes, the controller is torn down. The session
// is also the controller's prober, so each tick measures the page's own
// round trip: a ping frame out, the page's pong back.
type Session struct {
	id         uuid.UUID
	conn       *websocket.Conn
	controller *pinger.Controller
	logger     *slog.Logger

	writeMu sync.Mutex
	seq     atomic.Uint64
	pongs   chan uint64
	closed  chan struct{}
}

func newSession(conn *websocket.Conn, logger *slog.Logger, opts ...pinger.Option) *Session {
	s := &Session{
		id:     uuid.New(),
		conn:   conn,
		pongs:  make(chan uint64, 1),
		closed: make(chan struct{}),
	}
	s.logger = logger.With("session", s.id.String())
	opts = append(opts, pinger.WithLogger(s.logger))
	s.controller = pinger.NewController(s, s, s, opts...)
	return s
}

// ID identifies the session in logs
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Ping sends a ping frame and blocks until the page echoes it back
func (s *Session) Ping(ctx context.Context) error {
	seq := s.seq.Add(1)
	if err := s.send(Message{Type: TypePing, Seq: seq}); err != nil {
		return err
	}

	for {
		select {
		case got := <-s.pongs:
			// pongs for earlier, abandoned pings are dropped
			if got == seq {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return ErrSessionClosed
		}
	}
}

// Render pushes the latency text into the page's result element
func (s *Session) Render(text string) error {
	return s.send(Message{Type: TypeRender, Text: text})
}

// Disable disables and relabels the page's trigger button
func (s *Session) Disable(label string) error {
	return s.send(Message{Type: TypeTrigger, Disabled: true, Label: label})
}

func (s *Session) send(msg Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msg.Type, err)
	}
	return nil
}

func (s *Session) deliverPong(seq uint64) {
	select {
	case s.pongs <- seq:
		return
	default:
	}
	// keep only the newest pong
	select {
	case <-s.pongs:
	default:
	}
	select {
	case s.pongs <- seq:
	default:
	}
}

// run reads page events until the socket closes
func (s *Session) run(ctx context.Context) {
	defer s.controller.Teardown()
	defer close(s.closed)

	for {
		var msg Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("live session read failed", "error", err)
			}
			return
		}

		switch msg.Type {
		case TypeStart:
			err := s.controller.Start(ctx)
			if err != nil && !errors.Is(err, pinger.ErrAlreadySampling) {
				s.logger.Warn("failed to start sampling", "error", err)
			}
		case TypePong:
			s.deliverPong(msg.Seq)
		default:
			s.logger.Debug("ignoring live message", "type", msg.Type)
		}
	}
}
