package live

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pingboard/internal/pinger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGauge struct {
	value atomic.Int64
}

func (g *fakeGauge) Inc() { g.value.Add(1) }
func (g *fakeGauge) Dec() { g.value.Add(-1) }

// slowConn delays every write, as a page on a slow link would
type slowConn struct {
	net.Conn
	delay time.Duration
}

func (c *slowConn) Write(p []byte) (int, error) {
	time.Sleep(c.delay)
	return c.Conn.Write(p)
}

func slowDialer(delay time.Duration) *websocket.Dialer {
	return &websocket.Dialer{
		NetDialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			conn, err := (&net.Dialer{}).DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			return &slowConn{Conn: conn, delay: delay}, nil
		},
		HandshakeTimeout: 5 * time.Second,
	}
}

// page plays the browser side: it answers pings and queues everything else
type page struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	messages chan Message
	pings    atomic.Int64
}

func openPage(t *testing.T, server *httptest.Server, dialer *websocket.Dialer) *page {
	t.Helper()
	conn := dial(t, server, dialer)
	p := &page{conn: conn, messages: make(chan Message, 1024)}
	go p.read()
	return p
}

func (p *page) read() {
	defer close(p.messages)
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == TypePing {
			p.pings.Add(1)
			_ = p.write(Message{Type: TypePong, Seq: msg.Seq})
			continue
		}
		p.messages <- msg
	}
}

func (p *page) write(msg Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteJSON(msg)
}

func (p *page) next(t *testing.T) Message {
	t.Helper()
	select {
	case msg, ok := <-p.messages:
		require.True(t, ok, "socket closed")
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a message")
		return Message{}
	}
}

func newTestServer(t *testing.T, gauge Gauge) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger,
		WithControllerOptions(pinger.WithInterval(10*time.Millisecond), pinger.WithLabel("Pinging...")),
		WithSessionGauge(gauge),
	)
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, dialer *websocket.Dialer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := dialer.Dial(url, nil)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func renderedMillis(t *testing.T, msg Message) int64 {
	t.Helper()
	require.Equal(t, TypeRender, msg.Type)
	require.Regexp(t, `^\d+ms$`, msg.Text)
	ms, err := strconv.ParseInt(strings.TrimSuffix(msg.Text, "ms"), 10, 64)
	require.NoError(t, err)
	return ms
}

func TestHandler_SessionLifecycle(t *testing.T) {
	gauge := &fakeGauge{}
	server := newTestServer(t, gauge)
	p := openPage(t, server, websocket.DefaultDialer)

	// a pong nobody asked for must not satisfy a later ping
	require.NoError(t, p.write(Message{Type: TypePong, Seq: 999}))
	require.NoError(t, p.write(Message{Type: TypeStart}))

	assert.Equal(t, Message{Type: TypeTrigger, Disabled: true, Label: "Pinging..."}, p.next(t))
	renderedMillis(t, p.next(t))
	assert.Equal(t, int64(1), gauge.value.Load())

	// a repeated start must not relabel the trigger again
	require.NoError(t, p.write(Message{Type: TypeStart}))
	require.NoError(t, p.write(Message{Type: "unknown"}))
	for i := 0; i < 3; i++ {
		renderedMillis(t, p.next(t))
	}

	// closing the page tears the controller down
	require.NoError(t, p.conn.Close())
	waitFor(t, "session close", func() bool { return gauge.value.Load() == 0 })

	pings := p.pings.Load()
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, pings, p.pings.Load(), "no pings after teardown")
}

func TestHandler_RendersPageRoundTrip(t *testing.T) {
	const linkDelay = 150 * time.Millisecond

	server := newTestServer(t, nil)
	p := openPage(t, server, slowDialer(linkDelay))
	defer func() {
		_ = p.conn.Close()
	}()

	require.NoError(t, p.write(Message{Type: TypeStart}))
	assert.Equal(t, TypeTrigger, p.next(t).Type)

	for i := 0; i < 2; i++ {
		ms := renderedMillis(t, p.next(t))
		assert.GreaterOrEqual(t, ms, linkDelay.Milliseconds(), "render must include the page's link delay")
	}
}

func TestHandler_NoSamplingBeforeStart(t *testing.T) {
	gauge := &fakeGauge{}
	server := newTestServer(t, gauge)
	p := openPage(t, server, websocket.DefaultDialer)

	waitFor(t, "session open", func() bool { return gauge.value.Load() == 1 })
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int64(0), p.pings.Load())
	assert.Empty(t, p.messages)

	require.NoError(t, p.conn.Close())
	waitFor(t, "session close", func() bool { return gauge.value.Load() == 0 })
}

func TestHandler_SilentPageStillTearsDown(t *testing.T) {
	gauge := &fakeGauge{}
	server := newTestServer(t, gauge)
	conn := dial(t, server, websocket.DefaultDialer)

	require.NoError(t, conn.WriteJSON(Message{Type: TypeStart}))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypeTrigger, msg.Type)
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, TypePing, msg.Type)

	// the ping is never answered; closing must still release the session
	require.NoError(t, conn.Close())
	waitFor(t, "session close", func() bool { return gauge.value.Load() == 0 })
}

func TestHandler_RejectsPlainHTTP(t *testing.T) {
	server := newTestServer(t, nil)

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
