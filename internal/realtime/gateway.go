package realtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yungbote/collections-backend/internal/platform/logger"
	"github.com/yungbote/collections-backend/internal/realtime/bus"
)

const (
	DefaultPingInterval = 15 * time.Second
	writeWait           = 10 * time.Second
)

// Conn is the subset of *websocket.Conn the gateway drives.
type Conn interface {
	WriteJSON(v any) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Session is one live observer attached to a task.
type Session struct {
	ID     uuid.UUID
	TaskID string
	conn   Conn
	cancel context.CancelFunc
	once   sync.Once
	log    *logger.Logger
}

func (s *Session) close() {
	s.once.Do(func() {
		s.cancel()
		_ = s.conn.Close()
	})
}

type Options struct {
	PingInterval time.Duration
	// KeepOpenAfterTerminal leaves the connection open after a completed or
	// failed event instead of closing it.
	KeepOpenAfterTerminal bool
}

// Gateway holds at most one live connection per task identifier. A new
// connection for a task replaces and closes the previous one.
type Gateway struct {
	mu       sync.RWMutex
	log      *logger.Logger
	bus      bus.Bus
	opts     Options
	sessions map[string]*Session
}

func NewGateway(baseLog *logger.Logger, b bus.Bus, opts Options) *Gateway {
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	return &Gateway{
		log:      baseLog.With("component", "ProgressGateway"),
		bus:      b,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Connected reports whether a live connection is registered for taskID.
func (g *Gateway) Connected(taskID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.sessions[strings.TrimSpace(taskID)]
	return ok
}

func (g *Gateway) ActiveCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

func (g *Gateway) register(s *Session) {
	g.mu.Lock()
	prev := g.sessions[s.TaskID]
	g.sessions[s.TaskID] = s
	g.mu.Unlock()
	if prev != nil {
		g.log.Debug("replacing live connection", "task_id", s.TaskID, "previous", prev.ID, "session", s.ID)
		prev.close()
	}
}

// unregister removes s only if it is still the registered session, so a
// replaced connection cannot evict its successor.
func (g *Gateway) unregister(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.sessions[s.TaskID]; ok && cur == s {
		delete(g.sessions, s.TaskID)
	}
}

// Serve forwards every event for taskID to conn until the peer disconnects,
// the session is replaced, ctx ends, or a terminal event has been written.
// It always closes conn before returning.
func (g *Gateway) Serve(ctx context.Context, taskID string, conn Conn) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		_ = conn.Close()
		return errors.New("task id required")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub, err := g.bus.Subscribe(ctx, taskID)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer sub.Close()

	s := &Session{
		ID:     uuid.New(),
		TaskID: taskID,
		conn:   conn,
		cancel: cancel,
	}
	s.log = g.log.With("task_id", taskID, "session", s.ID)
	g.register(s)
	defer func() {
		g.unregister(s)
		s.close()
		s.log.Debug("live connection closed")
	}()
	s.log.Debug("live connection opened")

	// Inbound frames are ignored; reading only detects the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(g.opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				s.log.Debug("ping failed", "error", err)
				return nil
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(ev); err != nil {
				s.log.Debug("write failed; dropping connection", "error", err)
				return nil
			}
			if ev.Status.Terminal() && !g.opts.KeepOpenAfterTerminal {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(ev.Status)),
					time.Now().Add(writeWait),
				)
				return nil
			}
		}
	}
}

// Shutdown closes every live connection.
func (g *Gateway) Shutdown() {
	g.mu.Lock()
	sessions := make([]*Session, 0, len(g.sessions))
	for id, s := range g.sessions {
		sessions = append(sessions, s)
		delete(g.sessions, id)
	}
	g.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}
