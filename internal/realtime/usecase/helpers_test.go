package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

var errBrokenPipe = errors.New("broken pipe")

type fakeTransport struct {
	kind realtime.TransportKind

	mu          sync.Mutex
	frames      []*realtime.Outbound
	pings       int
	closed      bool
	reason      realtime.CloseReason
	failEnqueue bool
	failPing    bool
}

func newFakeTransport(kind realtime.TransportKind) *fakeTransport {
	return &fakeTransport{kind: kind}
}

func (f *fakeTransport) Kind() realtime.TransportKind { return f.kind }

func (f *fakeTransport) Enqueue(out *realtime.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return realtime.ErrConnectionClosed
	}
	if f.failEnqueue {
		return errBrokenPipe
	}
	f.frames = append(f.frames, out)
	return nil
}

func (f *fakeTransport) Ping() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPing {
		return errBrokenPipe
	}
	f.pings++
	return nil
}

func (f *fakeTransport) Close(reason realtime.CloseReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		f.reason = reason
	}
}

func (f *fakeTransport) setFailEnqueue(v bool) {
	f.mu.Lock()
	f.failEnqueue = v
	f.mu.Unlock()
}

func (f *fakeTransport) setFailPing(v bool) {
	f.mu.Lock()
	f.failPing = v
	f.mu.Unlock()
}

func (f *fakeTransport) isClosed() (bool, realtime.CloseReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed, f.reason
}

func (f *fakeTransport) pingCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pings
}

// named returns the frames with the given event name, in arrival order.
func (f *fakeTransport) named(name string) []*realtime.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*realtime.Outbound
	for _, o := range f.frames {
		if o.Name == name {
			out = append(out, o)
		}
	}
	return out
}

func (f *fakeTransport) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, o := range f.frames {
		out = append(out, o.Name)
	}
	return out
}

type stubVerifier map[string]string

func (s stubVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", jwt.ErrMissingToken
	}
	if sub, ok := s[token]; ok {
		return sub, nil
	}
	return "", jwt.ErrInvalidToken
}

type stubStore struct {
	active map[string]bool
	rooms  map[string]string
	err    error
}

func (s *stubStore) IsActiveUser(_ context.Context, userID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.active[userID], nil
}

func (s *stubStore) RoomOf(_ context.Context, entityType, entityID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	room, ok := s.rooms[entityType+"/"+entityID]
	if !ok {
		return "", errors.New("not found")
	}
	return room, nil
}

func newTestUseCase(t *testing.T, opts Options) *implUseCase {
	t.Helper()
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = time.Hour
	}
	uc := New(log.NewNop(), stubVerifier{"good": "user-1"}, nil, opts).(*implUseCase)
	t.Cleanup(func() { _ = uc.Shutdown(context.Background()) })
	return uc
}

func connect(t *testing.T, uc *implUseCase, owner string, kind realtime.TransportKind) (*realtime.Connection, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport(kind)
	conn, err := uc.Connect(context.Background(), realtime.ConnectInput{OwnerID: owner, Transport: tr})
	require.NoError(t, err)
	return conn, tr
}

func frame(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeEnvelope(t *testing.T, out *realtime.Outbound) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(out.Frame, &m))
	return m
}

const testSDP = "v=0\r\no=- 4215775240449105457 2 IN IP4 127.0.0.1\r\ns=-\r\nt=0 0\r\n"
