package bridge

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ClientHandle is one underlying pub/sub connection.
//
// Implementations must not block: Connect, Publish, Subscribe and Disconnect
// start the work and return. Callbacks may run on any goroutine.
type ClientHandle interface {
	// Connect starts a connection attempt. Exactly one of onSuccess or
	// onFailure is called when it completes, possibly never.
	Connect(onSuccess func(), onFailure func(err error))

	// Publish sends payload to topic without waiting for acknowledgement.
	Publish(topic, payload string)

	// Subscribe registers interest in a topic filter.
	Subscribe(topic string)

	// SetOnMessageArrived sets the callback invoked once per inbound
	// message, in the order the transport received them.
	SetOnMessageArrived(handler func(topic, payload string))

	// Disconnect releases the connection. The handle is not reused.
	Disconnect()
}

// ConnectionLossNotifier is implemented by handles that can report a
// connection dropped by the broker after a successful connect.
// A loss is logged and kept in LastError; Connected is left unchanged.
type ConnectionLossNotifier interface {
	SetOnConnectionLost(handler func(err error))
}

// ClientFactory creates a handle bound to a broker endpoint and client ID.
type ClientFactory func(host string, port int, clientID string) (ClientHandle, error)

// DeliveryObserver is told about every message NextMessage makes current.
// It is called on the poll goroutine and must not block.
type DeliveryObserver interface {
	Delivered(msg Message)
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// session is the state owned by one client handle. Callbacks registered on
// the handle hold a pointer to their session rather than to the adapter.
type session struct {
	id       uint64
	host     string
	port     int
	clientID string

	handle ClientHandle
	state  ConnectionState
	queue  MessageQueue

	arrivals  atomic.Uint64
	delivered uint64 // guarded by Adapter.mu
}

// Stats is a point-in-time view of the adapter, for status endpoints and telemetry.
type Stats struct {
	Session    uint64 `json:"session"`
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Host       string `json:"host,omitempty"`
	Port       int    `json:"port,omitempty"`
	ClientID   string `json:"client_id,omitempty"`
	QueueDepth int    `json:"queue_depth"`
	HasCurrent bool   `json:"has_current"`
	Arrivals   uint64 `json:"arrivals"`
	Delivered  uint64 `json:"delivered"`
	LastError  string `json:"last_error,omitempty"`
}

// Adapter exposes an MQTT client to a polling host.
//
// Thread Safety:
//   - All methods are safe for concurrent use and none of them block on the network.
//   - The host is expected to poll from a single logical goroutine; the
//     edge pulse from MessageReceived is shared by all callers.
type Adapter struct {
	factory ClientFactory
	now     func() time.Time

	mu         sync.Mutex
	sess       *session
	nextID     uint64
	edge       ArrivalEdgeDetector
	current    Message
	hasCurrent bool

	lastErr atomic.Pointer[error]

	logger   Logger
	observer DeliveryObserver
	optsMu   sync.RWMutex
}

// NewAdapter creates an unconfigured adapter that builds handles with factory.
func NewAdapter(factory ClientFactory) *Adapter {
	return &Adapter{
		factory: factory,
		now:     time.Now,
		sess:    &session{},
	}
}

// SetLogger sets a logger for connection and failure events.
// If not set, those events are silently dropped.
func (a *Adapter) SetLogger(logger Logger) {
	a.optsMu.Lock()
	a.logger = logger
	a.optsMu.Unlock()
}

// SetObserver sets the observer told about delivered messages. nil disables it.
func (a *Adapter) SetObserver(observer DeliveryObserver) {
	a.optsMu.Lock()
	a.observer = observer
	a.optsMu.Unlock()
}

func (a *Adapter) getLogger() Logger {
	a.optsMu.RLock()
	defer a.optsMu.RUnlock()
	return a.logger
}

func (a *Adapter) getObserver() DeliveryObserver {
	a.optsMu.RLock()
	defer a.optsMu.RUnlock()
	return a.observer
}

// Configure discards any existing client and creates a new one for the
// given endpoint.
//
// The connection flag, message queue, current message and edge detector are
// reset before the new handle is created. If creation fails the adapter is
// left without a handle; the failure is logged and kept in LastError.
func (a *Adapter) Configure(host string, port int, clientID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	sess := a.resetLocked()
	sess.host, sess.port, sess.clientID = host, port, clientID

	handle, err := a.createHandle(host, port, clientID)
	if err != nil {
		a.recordError(err)
		if logger := a.getLogger(); logger != nil {
			logger.Warn("MQTT client creation failed",
				"host", host,
				"port", port,
				"client_id", clientID,
				"error", err,
			)
		}
		return
	}

	handle.SetOnMessageArrived(func(topic, payload string) {
		a.onArrival(sess, topic, payload)
	})
	if n, ok := handle.(ConnectionLossNotifier); ok {
		n.SetOnConnectionLost(func(err error) {
			a.onConnectionLost(sess, err)
		})
	}
	sess.handle = handle

	if logger := a.getLogger(); logger != nil {
		logger.Info("MQTT client created",
			"host", host,
			"port", port,
			"client_id", clientID,
			"session", sess.id,
		)
	}
}

// Close tears down the current handle and returns the adapter to its
// unconfigured state.
func (a *Adapter) Close() {
	a.mu.Lock()
	a.resetLocked()
	a.mu.Unlock()
}

// resetLocked disconnects the current handle and installs an empty session.
// Caller must hold a.mu.
func (a *Adapter) resetLocked() *session {
	if old := a.sess; old.handle != nil {
		old.handle.Disconnect()
		old.handle = nil
	}
	// Anything still holding the old session sees it as disconnected.
	a.sess.state.MarkDisconnected()

	a.nextID++
	a.sess = &session{id: a.nextID}
	a.edge.Reset()
	a.current, a.hasCurrent = Message{}, false
	a.lastErr.Store(nil)
	return a.sess
}

// createHandle calls the factory, converting a panic into an error.
func (a *Adapter) createHandle(host string, port int, clientID string) (handle ClientHandle, err error) {
	if a.factory == nil {
		return nil, ErrNoFactory
	}

	defer func() {
		if r := recover(); r != nil {
			handle = nil
			err = fmt.Errorf("%w: panic: %v", ErrClientConstruction, r)
		}
	}()

	handle, err = a.factory(host, port, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClientConstruction, err)
	}
	if handle == nil {
		return nil, fmt.Errorf("%w: factory returned no client", ErrClientConstruction)
	}
	return handle, nil
}

// currentSession returns the active session and its handle.
func (a *Adapter) currentSession() (*session, ClientHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess, a.sess.handle
}

// Connect starts an asynchronous connection attempt. Without a handle it does nothing.
func (a *Adapter) Connect() {
	sess, handle := a.currentSession()
	if handle == nil {
		return
	}

	handle.Connect(
		func() { a.onConnect(sess) },
		func(err error) { a.onConnectFailure(sess, err) },
	)
}

// Publish forwards to the handle once connected; before that it does nothing.
// Delivery is not tracked.
func (a *Adapter) Publish(topic, payload string) {
	sess, handle := a.currentSession()
	if handle == nil || !sess.state.IsConnected() {
		return
	}
	handle.Publish(topic, payload)
}

// Subscribe forwards to the handle. Without a handle it does nothing.
func (a *Adapter) Subscribe(topic string) {
	_, handle := a.currentSession()
	if handle == nil {
		return
	}
	handle.Subscribe(topic)
}

// Connected reports whether the current handle's connect attempt succeeded.
func (a *Adapter) Connected() bool {
	sess, _ := a.currentSession()
	return sess.state.IsConnected()
}

// MessageReceived is the edge-pulse query described on ArrivalEdgeDetector.
// Each call advances the detector.
func (a *Adapter) MessageReceived() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.edge.Poll(&a.sess.queue)
}

// NextMessage moves the oldest buffered message into the current slot,
// or clears the slot when nothing is buffered.
func (a *Adapter) NextMessage() {
	a.mu.Lock()
	msg, ok := a.sess.queue.DequeueHead()
	a.current, a.hasCurrent = msg, ok
	if ok {
		a.sess.delivered++
	}
	a.mu.Unlock()

	if !ok {
		return
	}
	if observer := a.getObserver(); observer != nil {
		observer.Delivered(msg)
	}
}

// Topic returns the current message's topic, or "" when there is none.
func (a *Adapter) Topic() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasCurrent {
		return ""
	}
	return a.current.Topic
}

// Message returns the current message's payload, or "" when there is none.
func (a *Adapter) Message() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasCurrent {
		return ""
	}
	return a.current.Payload
}

// LastError returns the most recent construction or connect failure since
// the last Configure, or nil.
func (a *Adapter) LastError() error {
	if p := a.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}

// Stats returns a snapshot of the current session.
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.sess
	stats := Stats{
		Session:    s.id,
		Configured: s.handle != nil,
		Connected:  s.state.IsConnected(),
		Host:       s.host,
		Port:       s.port,
		ClientID:   s.clientID,
		QueueDepth: s.queue.Size(),
		HasCurrent: a.hasCurrent,
		Arrivals:   s.arrivals.Load(),
		Delivered:  s.delivered,
	}
	if err := a.LastError(); err != nil {
		stats.LastError = err.Error()
	}
	return stats
}

// isCurrent reports whether sess is still the active session.
func (a *Adapter) isCurrent(sess *session) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess == sess
}

// onArrival runs on the client's callback goroutine.
func (a *Adapter) onArrival(sess *session, topic, payload string) {
	sess.queue.Enqueue(Message{
		Topic:    topic,
		Payload:  payload,
		Received: a.now(),
	})
	sess.arrivals.Add(1)

	if logger := a.getLogger(); logger != nil {
		logger.Debug("MQTT message received", "topic", topic, "session", sess.id)
	}
}

func (a *Adapter) onConnect(sess *session) {
	sess.state.MarkConnected()

	if logger := a.getLogger(); logger != nil {
		logger.Info("MQTT connected",
			"host", sess.host,
			"port", sess.port,
			"client_id", sess.clientID,
			"session", sess.id,
		)
	}
}

func (a *Adapter) onConnectFailure(sess *session, err error) {
	if a.isCurrent(sess) {
		if err != nil {
			a.recordError(fmt.Errorf("%w: %w", ErrConnectFailed, err))
		} else {
			a.recordError(ErrConnectFailed)
		}
	}

	if logger := a.getLogger(); logger != nil {
		logger.Warn("MQTT connect failed",
			"host", sess.host,
			"port", sess.port,
			"client_id", sess.clientID,
			"session", sess.id,
			"error", err,
		)
	}
}

func (a *Adapter) onConnectionLost(sess *session, err error) {
	if !a.isCurrent(sess) {
		return
	}
	if err == nil {
		err = ErrConnectionLost
	} else {
		err = fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	a.recordError(err)

	if logger := a.getLogger(); logger != nil {
		logger.Warn("MQTT connection lost",
			"host", sess.host,
			"port", sess.port,
			"session", sess.id,
			"error", err,
		)
	}
}

func (a *Adapter) recordError(err error) {
	a.lastErr.Store(&err)
}
