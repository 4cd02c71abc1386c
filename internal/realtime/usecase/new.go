package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Jim-devENG/ispora-engine-sub009/internal/realtime"
	"github.com/Jim-devENG/ispora-engine-sub009/internal/recordstore"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/jwt"
	"github.com/Jim-devENG/ispora-engine-sub009/pkg/log"
)

type implUseCase struct {
	logger   log.Logger
	verifier jwt.Verifier
	store    recordstore.Store
	opts     Options
	now      func() time.Time

	rooms      *roomIndex
	reg        *registry
	seq        *sequence
	dispatcher *dispatcher
	supervisor *supervisor

	totalConns   atomic.Int64
	evictions    atomic.Int64
	shuttingDown atomic.Bool
	startedAt    time.Time
}

// New builds the fan-out use case. store may be nil, in which case token
// subjects are not checked against accounts and DispatchEntity is unavailable.
func New(l log.Logger, verifier jwt.Verifier, store recordstore.Store, opts Options) realtime.UseCase {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	rooms := newRoomIndex()
	reg := newRegistry(rooms)
	seq := &sequence{}

	uc := &implUseCase{
		logger:     l,
		verifier:   verifier,
		store:      store,
		opts:       opts,
		now:        now,
		rooms:      rooms,
		reg:        reg,
		seq:        seq,
		dispatcher: newDispatcher(reg, rooms, seq),
		startedAt:  now(),
	}
	uc.supervisor = newSupervisor(l, opts.HeartbeatInterval, now, uc.remove)
	return uc
}

func (uc *implUseCase) Authenticate(ctx context.Context, token string) (string, error) {
	subject, err := uc.verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", realtime.ErrAuthRejected, err)
	}
	if uc.store == nil {
		return subject, nil
	}

	active, err := uc.store.IsActiveUser(ctx, subject)
	if err != nil {
		if !errors.Is(err, recordstore.ErrNotFound) {
			uc.logger.Errorf(ctx, "internal.realtime.usecase.Authenticate.IsActiveUser: %v", err)
		}
		return "", fmt.Errorf("%w: %v", realtime.ErrAuthRejected, err)
	}
	if !active {
		return "", fmt.Errorf("%w: user %s is not active", realtime.ErrAuthRejected, subject)
	}
	return subject, nil
}

func (uc *implUseCase) Connect(ctx context.Context, input realtime.ConnectInput) (*realtime.Connection, error) {
	if uc.shuttingDown.Load() {
		return nil, realtime.ErrShuttingDown
	}

	conn := realtime.NewConnection(uuid.NewString(), input.OwnerID, input.Transport, uc.now())

	// The greeting is queued before registration so it is always the first frame.
	hello := realtime.Unicast(conn.ID(), realtime.EventConnected, connectedPayload{
		ConnectionID: conn.ID(),
		UserID:       conn.OwnerID(),
	})
	if err := uc.dispatcher.Send(conn, hello); err != nil {
		return nil, fmt.Errorf("%w: %v", realtime.ErrWriteFailure, err)
	}

	if err := uc.reg.Register(conn, uc.opts.MaxConnections); err != nil {
		return nil, err
	}
	if uc.shuttingDown.Load() {
		uc.reg.Remove(conn.ID())
		return nil, realtime.ErrShuttingDown
	}
	uc.supervisor.Track(conn)
	uc.totalConns.Add(1)

	uc.logger.Infof(ctx, "connection %s registered for user %s over %s", conn.ID(), conn.OwnerID(), conn.Kind())
	return conn, nil
}

func (uc *implUseCase) Disconnect(ctx context.Context, connID string, cause error) {
	uc.remove(ctx, connID, cause)
}

func (uc *implUseCase) Touch(connID string) {
	if conn, ok := uc.reg.Get(connID); ok {
		conn.Touch(uc.now())
	}
}

func (uc *implUseCase) HandleFrame(ctx context.Context, connID string, data []byte) error {
	conn, ok := uc.reg.Get(connID)
	if !ok {
		return realtime.ErrConnectionNotFound
	}
	conn.Touch(uc.now())

	frame, err := realtime.ParseFrame(data)
	if err != nil {
		uc.logger.Warnf(ctx, "internal.realtime.usecase.HandleFrame.ParseFrame: connection %s: %v", connID, err)
		return err
	}
	if err := uc.route(ctx, conn, frame); err != nil {
		uc.logger.Warnf(ctx, "internal.realtime.usecase.HandleFrame.route: connection %s %s: %v", connID, frame.Type(), err)
		return err
	}
	return nil
}

func (uc *implUseCase) Dispatch(ctx context.Context, e realtime.Event) int {
	n, failures, err := uc.dispatcher.Dispatch(e)
	if err != nil {
		uc.logger.Errorf(ctx, "internal.realtime.usecase.Dispatch: %v", err)
		return 0
	}
	for _, f := range failures {
		uc.remove(ctx, f.connID, fmt.Errorf("%w: %v", realtime.ErrWriteFailure, f.err))
	}
	return n
}

func (uc *implUseCase) DispatchEntity(ctx context.Context, entityType, entityID string, e realtime.Event) (int, error) {
	if uc.store == nil {
		return 0, ErrNoRecordStore
	}
	room, err := uc.store.RoomOf(ctx, entityType, entityID)
	if err != nil {
		return 0, err
	}
	e.Scope = realtime.ScopeRoom
	e.Room = room
	return uc.Dispatch(ctx, e), nil
}

func (uc *implUseCase) Join(ctx context.Context, connID, room string) error {
	if err := realtime.ValidateRoomID(room); err != nil {
		return err
	}
	_, err := uc.reg.Join(room, connID)
	return err
}

func (uc *implUseCase) Leave(ctx context.Context, connID, room string) error {
	_, err := uc.reg.Leave(room, connID)
	return err
}

func (uc *implUseCase) MembersOf(room string) []string {
	return uc.rooms.MembersOf(room)
}

func (uc *implUseCase) RoomsOf(connID string) []string {
	return uc.rooms.RoomsOf(connID)
}

func (uc *implUseCase) Stats() realtime.Stats {
	counts := uc.reg.Counts()
	return realtime.Stats{
		ActiveConnections: counts.total,
		WebSocket:         counts.websocket,
		SSE:               counts.sse,
		UniqueOwners:      counts.owners,
		Rooms:             uc.rooms.Stats(),
		TotalConnections:  uc.totalConns.Load(),
		EventsDispatched:  uc.dispatcher.events.Load(),
		FramesDelivered:   uc.dispatcher.delivered.Load(),
		FramesFailed:      uc.dispatcher.failed.Load(),
		Evictions:         uc.evictions.Load(),
		LastSequence:      uc.seq.Current(),
		HeartbeatInterval: uc.opts.HeartbeatInterval.String(),
		StartedAt:         uc.startedAt,
	}
}

// Shutdown refuses new connections and closes every live one.
func (uc *implUseCase) Shutdown(ctx context.Context) error {
	uc.shuttingDown.Store(true)

	var closed int
	uc.reg.ForEach(nil, func(conn *realtime.Connection) {
		if ctx.Err() != nil {
			return
		}
		if removed, _, ok := uc.reg.Remove(conn.ID()); ok {
			removed.Transport().Close(realtime.CloseShutdown)
			closed++
		}
	})
	uc.logger.Infof(ctx, "realtime shutdown closed %d connections", closed)
	return ctx.Err()
}

// remove is the single removal path: registry, rooms, lease, transport and
// the user-left notices for every room the connection was in.
func (uc *implUseCase) remove(ctx context.Context, connID string, cause error) {
	conn, rooms, ok := uc.reg.Remove(connID)
	if !ok {
		return
	}

	reason := closeReasonFor(cause)
	if reason == realtime.CloseEvicted {
		conn.MarkEvicted()
		uc.evictions.Add(1)
	}
	conn.Transport().Close(reason)

	if cause != nil {
		uc.logger.Infof(ctx, "connection %s removed: %v", connID, cause)
	} else {
		uc.logger.Debugf(ctx, "connection %s closed", connID)
	}

	if uc.shuttingDown.Load() {
		return
	}
	for _, room := range rooms {
		uc.Dispatch(ctx, realtime.BroadcastRoom(room, realtime.EventUserLeft, presencePayload{
			Room:         room,
			UserID:       conn.OwnerID(),
			ConnectionID: conn.ID(),
		}))
	}
}

func closeReasonFor(cause error) realtime.CloseReason {
	switch {
	case cause == nil:
		return realtime.CloseNormal
	case errors.Is(cause, realtime.ErrShuttingDown):
		return realtime.CloseShutdown
	case errors.Is(cause, realtime.ErrLivenessTimeout),
		errors.Is(cause, realtime.ErrWriteFailure),
		errors.Is(cause, realtime.ErrSendBufferFull):
		return realtime.CloseEvicted
	default:
		return realtime.CloseNormal
	}
}
