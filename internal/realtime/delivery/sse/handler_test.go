package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime/usecase"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

var jwtCfg = jwt.Config{SecretKey: "sse-test-secret-0123456789abcdefghij"}

type streamEvent struct {
	id    string
	event string
	data  string
}

func newServer(t *testing.T, opts usecase.Options) (*httptest.Server, realtime.UseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := jwt.NewVerifier(jwtCfg)
	require.NoError(t, err)
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = time.Hour
	}
	uc := usecase.New(log.NewNop(), verifier, nil, opts)

	r := gin.New()
	New(log.NewNop(), uc, Config{WriteWait: time.Second, SendBufferSize: 16}).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		_ = uc.Shutdown(context.Background())
		srv.Close()
	})
	return srv, uc
}

func token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := jwt.GenerateToken(jwtCfg, jwt.GenerateInput{Subject: subject})
	require.NoError(t, err)
	return tok
}

func open(t *testing.T, ctx context.Context, srv *httptest.Server, tok string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func next(t *testing.T, r *bufio.Reader) streamEvent {
	t.Helper()
	var ev streamEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			return ev
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		// EventSource field parsing: a single space after the colon is dropped.
		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch key {
		case "id":
			ev.id = value
		case "event":
			ev.event = value
		case "data":
			ev.data = value
		}
	}
}

func TestHandleEvents_Unauthorized(t *testing.T) {
	srv, _ := newServer(t, usecase.Options{})

	resp := open(t, context.Background(), srv, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = open(t, context.Background(), srv, "garbage")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleEvents_Stream(t *testing.T) {
	srv, uc := newServer(t, usecase.Options{})

	resp := open(t, context.Background(), srv, token(t, "alice"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no", resp.Header.Get("X-Accel-Buffering"))

	r := bufio.NewReader(resp.Body)
	hello := next(t, r)
	assert.Equal(t, realtime.EventConnected, hello.event)
	assert.Equal(t, "1", hello.id)

	var greeting map[string]string
	require.NoError(t, json.Unmarshal([]byte(hello.data), &greeting))
	assert.Equal(t, "alice", greeting["userId"])

	require.Eventually(t, func() bool {
		return uc.Stats().SSE == 1
	}, 2*time.Second, 10*time.Millisecond)

	n := uc.Dispatch(context.Background(), realtime.BroadcastAll("notification", map[string]string{"title": "hi"}))
	require.Equal(t, 1, n)

	ev := next(t, r)
	assert.Equal(t, "notification", ev.event)
	assert.Equal(t, "2", ev.id)
	assert.JSONEq(t, `{"title":"hi"}`, ev.data)
}

func TestHandleEvents_ClientGoneUnregisters(t *testing.T) {
	srv, uc := newServer(t, usecase.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	resp := open(t, ctx, srv, token(t, "bob"))
	next(t, bufio.NewReader(resp.Body))
	require.Eventually(t, func() bool {
		return uc.Stats().ActiveConnections == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	require.Eventually(t, func() bool {
		return uc.Stats().ActiveConnections == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleEvents_ConnectionLimit(t *testing.T) {
	srv, uc := newServer(t, usecase.Options{MaxConnections: 1})

	first := open(t, context.Background(), srv, token(t, "carol"))
	next(t, bufio.NewReader(first.Body))
	require.Eventually(t, func() bool {
		return uc.Stats().ActiveConnections == 1
	}, 2*time.Second, 10*time.Millisecond)

	second := open(t, context.Background(), srv, token(t, "carol"))
	assert.Equal(t, http.StatusServiceUnavailable, second.StatusCode)
}

func TestHandleEvents_ShutdownEndsStream(t *testing.T) {
	srv, uc := newServer(t, usecase.Options{})

	resp := open(t, context.Background(), srv, token(t, "dave"))
	r := bufio.NewReader(resp.Body)
	next(t, r)
	require.Eventually(t, func() bool {
		return uc.Stats().ActiveConnections == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, uc.Shutdown(context.Background()))

	_, err := r.ReadString('\n')
	assert.Error(t, err)
}

func TestTransport(t *testing.T) {
	t.Run("full buffer", func(t *testing.T) {
		tr := newTransport(1)
		require.NoError(t, tr.Enqueue(&realtime.Outbound{Name: "a"}))
		assert.ErrorIs(t, tr.Enqueue(&realtime.Outbound{Name: "b"}), realtime.ErrSendBufferFull)
	})

	t.Run("closed", func(t *testing.T) {
		tr := newTransport(1)
		tr.Close(realtime.CloseNormal)
		tr.Close(realtime.CloseEvicted)
		assert.ErrorIs(t, tr.Enqueue(&realtime.Outbound{Name: "a"}), realtime.ErrConnectionClosed)
		assert.ErrorIs(t, tr.Ping(), realtime.ErrConnectionClosed)
	})

	t.Run("heartbeat has no id", func(t *testing.T) {
		tr := newTransport(1)
		tr.now = func() time.Time { return time.UnixMilli(1700000000000) }
		require.NoError(t, tr.Ping())

		out := <-tr.send
		assert.Equal(t, realtime.EventHeartbeat, out.Name)
		assert.Zero(t, out.Sequence)
		assert.JSONEq(t, `{"timestamp":1700000000000}`, string(out.Data))
	})
}

func TestWriteEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	require.NoError(t, writeEvent(c.Writer, &realtime.Outbound{Name: "update", Sequence: 7, Data: []byte(`{"a":1}`)}))
	require.NoError(t, writeEvent(c.Writer, &realtime.Outbound{Name: realtime.EventHeartbeat, Data: []byte(`{}`)}))

	assert.Equal(t, "id:7\nevent:update\ndata:{\"a\":1}\n\nevent:heartbeat\ndata:{}\n\n", rec.Body.String())
}

func TestWriteEvent_EventSourceFieldParsing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	require.NoError(t, writeEvent(c.Writer, &realtime.Outbound{Name: "update", Sequence: 7, Data: []byte(`{"a":1}`)}))

	tests := []struct {
		name   string
		stream string
	}{
		{name: "as written", stream: rec.Body.String()},
		{name: "space after colon", stream: "id: 7\nevent: update\ndata: {\"a\":1}\n\n"},
		{name: "with comment line", stream: ": keep-alive\nid:7\nevent:update\ndata:{\"a\":1}\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := next(t, bufio.NewReader(strings.NewReader(tt.stream)))
			assert.Equal(t, "7", ev.id)
			assert.Equal(t, "update", ev.event)
			assert.JSONEq(t, `{"a":1}`, ev.data)
		})
	}
}

type warnRecorder struct {
	log.Logger

	mu       sync.Mutex
	warnings []string
}

func (l *warnRecorder) Warnf(_ context.Context, template string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(template, args...))
}

func TestStream_MissingDeadlineSupportLoggedOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	l := &warnRecorder{Logger: log.NewNop()}

	st := &stream{w: c.Writer, rc: http.NewResponseController(c.Writer), wait: time.Second, logger: l}
	require.NoError(t, st.write(context.Background(), &realtime.Outbound{Name: "a", Sequence: 1, Data: []byte(`{}`)}))
	require.NoError(t, st.write(context.Background(), &realtime.Outbound{Name: "b", Sequence: 2, Data: []byte(`{}`)}))

	require.Len(t, l.warnings, 1)
	assert.Contains(t, l.warnings[0], "SetWriteDeadline")
	assert.Contains(t, rec.Body.String(), "event:b")
}

type disconnectRecorder struct {
	realtime.UseCase
	causes chan error
}

func (r *disconnectRecorder) Disconnect(ctx context.Context, connID string, cause error) {
	select {
	case r.causes <- cause:
	default:
	}
	r.UseCase.Disconnect(ctx, connID, cause)
}

func TestHandleEvents_StalledReaderHitsWriteDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := jwt.NewVerifier(jwtCfg)
	require.NoError(t, err)
	uc := usecase.New(log.NewNop(), verifier, nil, usecase.Options{HeartbeatInterval: time.Hour})
	rec := &disconnectRecorder{UseCase: uc, causes: make(chan error, 1)}

	r := gin.New()
	New(log.NewNop(), rec, Config{WriteWait: 50 * time.Millisecond, SendBufferSize: 4096}).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		_ = uc.Shutdown(context.Background())
		srv.Close()
	})

	// The client sends its request and then never reads.
	conn, err := net.Dial("tcp", srv.Listener.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetReadBuffer(4096)
	}
	_, err = fmt.Fprintf(conn, "GET /events HTTP/1.1\r\nHost: %s\r\nAuthorization: Bearer %s\r\n\r\n", srv.Listener.Addr(), token(t, "erin"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return uc.Stats().SSE == 1
	}, 2*time.Second, 10*time.Millisecond)

	blob := strings.Repeat("x", 64<<10)
	for i := 0; i < 512; i++ {
		if uc.Dispatch(context.Background(), realtime.BroadcastAll("bulk", map[string]string{"blob": blob})) == 0 {
			break
		}
	}

	select {
	case cause := <-rec.causes:
		assert.ErrorIs(t, cause, realtime.ErrWriteFailure)
	case <-time.After(5 * time.Second):
		t.Fatal("stalled reader was never disconnected")
	}
	require.Eventually(t, func() bool {
		return uc.Stats().ActiveConnections == 0
	}, 2*time.Second, 10*time.Millisecond)
}
