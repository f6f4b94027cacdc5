// Package session keeps one logical websocket connection to the pixel server
// alive: connect with timeout, heartbeat, exponential-backoff reconnect, an
// outbound queue for sends made while offline, and dispatch of inbound
// messages into the Store.
//
// Every method must be called on the loop goroutine. Network goroutines only
// post back to the loop; callbacks belonging to a superseded connection are
// recognised by their generation number and dropped.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zyedidia/generic/queue"

	"pixelbattle/pkg/engine/loop"
	"pixelbattle/pkg/engine/store"
	"pixelbattle/pkg/game/state"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateFailed is terminal: the retry budget is spent.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Poster queues work onto the loop goroutine.
type Poster interface {
	Post(fn func())
}

// Options configures a Manager.
type Options struct {
	URL               string
	ConnectTimeout    time.Duration
	HeartbeatInterval time.Duration
	ReconnectBase     time.Duration
	ReconnectCap      time.Duration
	MaxAttempts       int
}

// Handlers receive events the Store does not model. Nil fields are skipped.
type Handlers struct {
	// OnServerError is called for server "error" messages.
	OnServerError func(message string)
	// OnTransportError is called when dialing or writing fails.
	OnTransportError func(err error)
	// OnGiveUp is called once the reconnect budget is exhausted.
	OnGiveUp func(attempts int)
	// OnStats is called with the payload of a stats_response.
	OnStats func(stats map[string]any)
}

// Manager owns the connection lifecycle. Construct with New.
type Manager struct {
	opts     Options
	dialer   Dialer
	store    *store.Store
	poster   Poster
	timers   *loop.Scope
	handlers Handlers

	// Jitter returns the random extra delay added to each backoff.
	Jitter func(time.Duration) time.Duration

	state      State
	conn       Conn
	connID     string
	gen        uint64
	cancelDial context.CancelFunc
	manual     bool
	attempts   int

	outbox *queue.Queue[any]
	queued int

	connectTimer   loop.Timer
	heartbeat      loop.Timer
	reconnectTimer loop.Timer
}

// New returns a disconnected manager. Timers are scheduled on clock, network
// callbacks are posted through poster.
func New(opts Options, dialer Dialer, s *store.Store, poster Poster, clock loop.Clock, h Handlers) *Manager {
	return &Manager{
		opts:     opts,
		dialer:   dialer,
		store:    s,
		poster:   poster,
		timers:   loop.NewScope(clock),
		handlers: h,
		Jitter:   Jitter,
		outbox:   queue.New[any](),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Attempts returns the reconnect attempts made since the last open.
func (m *Manager) Attempts() int {
	return m.attempts
}

// Queued returns how many messages wait for the next open.
func (m *Manager) Queued() int {
	return m.queued
}

func (m *Manager) now() time.Time {
	return m.timers.Clock().Now()
}

func (m *Manager) logf(format string, args ...any) {
	id := m.connID
	if len(id) > 8 {
		id = id[:8]
	}
	log.Printf("session %s: "+format, append([]any{id}, args...)...)
}

func (m *Manager) setState(s State) {
	m.state = s
	m.store.BatchUpdate(map[string]any{
		state.PathConnected:         s == StateConnected,
		state.PathStatus:            s.String(),
		state.PathReconnectAttempts: m.attempts,
	})
}

// Connect opens the transport unless a connection is already open or being
// opened.
func (m *Manager) Connect() {
	if m.state == StateConnecting || m.state == StateConnected {
		return
	}
	if m.state == StateFailed {
		m.attempts = 0
	}
	m.manual = false
	m.gen++
	gen := m.gen
	m.connID = uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel
	m.setState(StateConnecting)
	m.logf("connecting to %s", m.opts.URL)

	if m.opts.ConnectTimeout > 0 {
		m.connectTimer = m.timers.AfterFunc(m.opts.ConnectTimeout, func() { m.handleTimeout(gen) })
	}

	go func() {
		conn, err := m.dialer.Dial(ctx, m.opts.URL)
		m.poster.Post(func() {
			if err != nil {
				m.handleDialError(gen, err)
				return
			}
			m.handleOpen(gen, conn)
		})
	}()
}

// Disconnect closes the transport with a normal-closure code. No reconnect is
// scheduled and the attempt counter is reset.
func (m *Manager) Disconnect() {
	m.manual = true
	m.stopTimers()
	m.gen++
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	if m.conn != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client disconnect")
		if err := m.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			m.logf("close frame not sent: %v", err)
		}
		m.conn.Close()
		m.conn = nil
	}
	m.attempts = 0
	m.setState(StateDisconnected)
	m.logf("disconnected")
}

// Close disconnects and releases every timer.
func (m *Manager) Close() {
	m.Disconnect()
	m.timers.Stop()
}

// Send serializes msg and writes it if the connection is open. Otherwise,
// when queueIfDisconnected is set, msg is kept for the next open. It reports
// whether msg was written now; failures are logged, never returned.
func (m *Manager) Send(msg any, queueIfDisconnected bool) bool {
	if m.state != StateConnected || m.conn == nil {
		if queueIfDisconnected {
			m.outbox.Enqueue(msg)
			m.queued++
			m.logf("offline, queued message (%d waiting)", m.queued)
		}
		return false
	}

	data, err := json.Marshal(msg)
	if err != nil {
		m.logf("cannot encode %T: %v", msg, err)
		return false
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.logf("write failed: %v", err)
		if m.handlers.OnTransportError != nil {
			m.handlers.OnTransportError(err)
		}
		return false
	}
	return true
}

// RequestStats asks the server for statistics; the reply arrives through
// Handlers.OnStats and server.stats.
func (m *Manager) RequestStats() bool {
	return m.Send(NewGetStats(), false)
}

func (m *Manager) stopTimers() {
	for _, t := range []loop.Timer{m.connectTimer, m.heartbeat, m.reconnectTimer} {
		if t != nil {
			t.Stop()
		}
	}
	m.connectTimer, m.heartbeat, m.reconnectTimer = nil, nil, nil
}

func (m *Manager) handleOpen(gen uint64, conn Conn) {
	if gen != m.gen {
		// Superseded by a timeout or Disconnect while dialing
		conn.Close()
		return
	}
	m.cancelDial = nil
	m.conn = conn
	m.attempts = 0
	m.stopTimers()
	m.setState(StateConnected)
	m.logf("connected")

	go m.readLoop(gen, conn)

	m.flush()

	if m.opts.HeartbeatInterval > 0 {
		m.heartbeat = m.timers.Every(m.opts.HeartbeatInterval, func() {
			m.Send(NewPing(m.now().UnixMilli()), false)
		})
	}
}

// flush drains the outbound queue oldest first. Sends do not re-queue.
func (m *Manager) flush() {
	n := m.queued
	if n == 0 {
		return
	}
	sent := 0
	for !m.outbox.Empty() {
		msg := m.outbox.Dequeue()
		m.queued--
		if m.Send(msg, false) {
			sent++
		}
	}
	m.logf("flushed %d of %d queued messages", sent, n)
}

func (m *Manager) readLoop(gen uint64, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			code := closeCode(err)
			m.poster.Post(func() { m.handleClose(gen, code) })
			return
		}
		m.poster.Post(func() { m.handleMessage(gen, data) })
	}
}

func (m *Manager) handleDialError(gen uint64, err error) {
	if gen != m.gen {
		return
	}
	m.cancelDial = nil
	m.logf("connection error: %v", err)
	if m.handlers.OnTransportError != nil {
		m.handlers.OnTransportError(err)
	}
	m.closed(websocket.CloseAbnormalClosure)
}

func (m *Manager) handleTimeout(gen uint64) {
	if gen != m.gen || m.state != StateConnecting {
		return
	}
	m.logf("connection timeout after %v", m.opts.ConnectTimeout)
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	// A dial that completes after this point is stale
	m.gen++
	m.closed(websocket.CloseAbnormalClosure)
}

func (m *Manager) handleClose(gen uint64, code int) {
	if gen != m.gen {
		return
	}
	m.logf("connection closed (code %d)", code)
	m.closed(code)
}

func (m *Manager) closed(code int) {
	m.stopTimers()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.setState(StateDisconnected)

	if m.manual || code == websocket.CloseNormalClosure {
		return
	}
	m.scheduleReconnect()
}

func (m *Manager) scheduleReconnect() {
	if m.attempts >= m.opts.MaxAttempts {
		m.setState(StateFailed)
		m.logf("giving up after %d reconnect attempts", m.attempts)
		if m.handlers.OnGiveUp != nil {
			m.handlers.OnGiveUp(m.attempts)
		}
		return
	}

	m.attempts++
	delay := Backoff(m.opts.ReconnectBase, m.opts.ReconnectCap, m.attempts)
	if m.Jitter != nil {
		delay += m.Jitter(delay)
	}
	m.store.Set(state.PathReconnectAttempts, m.attempts)
	m.logf("reconnect %d/%d in %v", m.attempts, m.opts.MaxAttempts, delay.Round(time.Millisecond))

	m.reconnectTimer = m.timers.AfterFunc(delay, func() {
		m.reconnectTimer = nil
		if state.Connected(m.store) {
			return
		}
		m.Connect()
	})
}

func (m *Manager) handleMessage(gen uint64, data []byte) {
	if gen != m.gen {
		return
	}
	msg, err := Decode(data)
	if err != nil {
		m.logf("dropping message: %v", err)
		return
	}
	m.dispatch(msg)
}

func (m *Manager) dispatch(msg Inbound) {
	switch msg := msg.(type) {
	case *Init:
		updates := map[string]any{
			state.PathPixels:      state.NewPixelMap(msg.Pixels),
			state.PathOnlineUsers: msg.OnlineUsers,
		}
		if info := msg.CanvasInfo; info != nil {
			updates[state.PathServerWidth] = info.Width
			updates[state.PathServerHeight] = info.Height
			updates[state.PathServerCooldown] = info.CooldownTime
		}
		m.store.BatchUpdate(updates)
		m.logf("snapshot with %d pixels, %d online", len(msg.Pixels), msg.OnlineUsers)

	case *PixelUpdate:
		state.PutPixels(m.store, msg.Pixels...)

	case *UserCount:
		m.store.Set(state.PathOnlineUsers, msg.Count)

	case *Pong:
		now := m.now()
		m.store.BatchUpdate(map[string]any{
			state.PathLastPing: now,
			state.PathLatency:  now.Sub(time.UnixMilli(msg.Timestamp)),
		})

	case *ServerError:
		m.logf("server error: %s", msg.Message)
		if m.handlers.OnServerError != nil {
			m.handlers.OnServerError(msg.Message)
		}

	case *Stats:
		m.store.Set(state.PathServerStats, msg.Stats)
		if m.handlers.OnStats != nil {
			m.handlers.OnStats(msg.Stats)
		}

	case *Unknown:
		m.logf("ignoring message type %q", msg.Type)

	default:
		m.logf("unhandled message %s", fmt.Sprintf("%T", msg))
	}
}
