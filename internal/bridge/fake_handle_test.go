package bridge

import (
	"errors"
	"sync"
)

// fakeHandle records calls and lets tests fire the callbacks a real client
// would fire from its network goroutine.
type fakeHandle struct {
	mu sync.Mutex

	host     string
	port     int
	clientID string

	connectCalls    int
	publishCalls    int
	subscribeCalls  int
	disconnectCalls int

	published  []Message
	subscribed []string

	onSuccess func()
	onFailure func(error)
	onMessage func(topic, payload string)
	onLost    func(error)
}

func (h *fakeHandle) Connect(onSuccess func(), onFailure func(err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connectCalls++
	h.onSuccess = onSuccess
	h.onFailure = onFailure
}

func (h *fakeHandle) Publish(topic, payload string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.publishCalls++
	h.published = append(h.published, Message{Topic: topic, Payload: payload})
}

func (h *fakeHandle) Subscribe(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeCalls++
	h.subscribed = append(h.subscribed, topic)
}

func (h *fakeHandle) SetOnMessageArrived(handler func(topic, payload string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMessage = handler
}

func (h *fakeHandle) SetOnConnectionLost(handler func(err error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onLost = handler
}

func (h *fakeHandle) Disconnect() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnectCalls++
}

// succeed simulates the connect success callback.
func (h *fakeHandle) succeed() {
	h.mu.Lock()
	cb := h.onSuccess
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// fail simulates the connect failure callback.
func (h *fakeHandle) fail(err error) {
	h.mu.Lock()
	cb := h.onFailure
	h.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

// arrive simulates an inbound message.
func (h *fakeHandle) arrive(topic, payload string) {
	h.mu.Lock()
	cb := h.onMessage
	h.mu.Unlock()
	if cb != nil {
		cb(topic, payload)
	}
}

// drop simulates the broker closing an established connection.
func (h *fakeHandle) drop(err error) {
	h.mu.Lock()
	cb := h.onLost
	h.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}

func (h *fakeHandle) counts() (connect, publish, subscribe, disconnect int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connectCalls, h.publishCalls, h.subscribeCalls, h.disconnectCalls
}

// fakeFactory hands out fakeHandles and remembers them in creation order.
type fakeFactory struct {
	mu      sync.Mutex
	handles []*fakeHandle
	err     error
	panics  bool
}

func (f *fakeFactory) create(host string, port int, clientID string) (ClientHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.panics {
		panic("invalid argument")
	}
	if f.err != nil {
		return nil, f.err
	}

	h := &fakeHandle{host: host, port: port, clientID: clientID}
	f.handles = append(f.handles, h)
	return h, nil
}

// last returns the most recently created handle.
func (f *fakeFactory) last() *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

var errBrokerRefused = errors.New("connection refused")

// newTestAdapter returns an adapter wired to a fresh fake factory.
func newTestAdapter() (*Adapter, *fakeFactory) {
	f := &fakeFactory{}
	return NewAdapter(f.create), f
}

// connectedAdapter returns an adapter that has completed configure, connect
// and a successful connect callback.
func connectedAdapter() (*Adapter, *fakeHandle) {
	a, f := newTestAdapter()
	a.Configure("h", 1, "c")
	a.Connect()
	h := f.last()
	h.succeed()
	return a, h
}
