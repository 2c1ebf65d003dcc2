package mqtt

import (
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
)

// fakeToken is a pahomqtt.Token completed by the test.
type fakeToken struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newFakeToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

func completedToken(err error) *fakeToken {
	t := newFakeToken()
	t.complete(err)
	return t
}

func (t *fakeToken) complete(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

func (t *fakeToken) Wait() bool {
	<-t.done
	return true
}

func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// fakePaho stands in for a paho client. It keeps the options it was built
// with so tests can fire the handlers paho would fire.
type fakePaho struct {
	mu   sync.Mutex
	opts *pahomqtt.ClientOptions

	connectToken *fakeToken
	connectCalls int
	publishErr   error
	subscribeErr error

	published    []fakeMessage
	subscribed   []string
	subscribeCBs []pahomqtt.MessageHandler
	disconnected chan uint
}

func newFakePaho(opts *pahomqtt.ClientOptions) *fakePaho {
	return &fakePaho{
		opts:         opts,
		connectToken: newFakeToken(),
		disconnected: make(chan uint, 1),
	}
}

func (p *fakePaho) IsConnected() bool      { return false }
func (p *fakePaho) IsConnectionOpen() bool { return false }

func (p *fakePaho) Connect() pahomqtt.Token {
	p.mu.Lock()
	p.connectCalls++
	p.mu.Unlock()
	return p.connectToken
}

func (p *fakePaho) connects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectCalls
}

func (p *fakePaho) Disconnect(quiesce uint) {
	p.disconnected <- quiesce
}

func (p *fakePaho) Publish(topic string, _ byte, _ bool, payload interface{}) pahomqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	var body []byte
	switch v := payload.(type) {
	case string:
		body = []byte(v)
	case []byte:
		body = v
	}
	p.published = append(p.published, fakeMessage{topic: topic, payload: body})
	return completedToken(p.publishErr)
}

func (p *fakePaho) Subscribe(topic string, _ byte, callback pahomqtt.MessageHandler) pahomqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribed = append(p.subscribed, topic)
	p.subscribeCBs = append(p.subscribeCBs, callback)
	return completedToken(p.subscribeErr)
}

func (p *fakePaho) SubscribeMultiple(map[string]byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return completedToken(nil)
}

func (p *fakePaho) Unsubscribe(...string) pahomqtt.Token {
	return completedToken(nil)
}

func (p *fakePaho) AddRoute(string, pahomqtt.MessageHandler) {}

func (p *fakePaho) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

// deliver simulates paho routing an inbound message to the default handler.
func (p *fakePaho) deliver(topic, payload string) {
	p.opts.DefaultPublishHandler(p, fakeMessage{topic: topic, payload: []byte(payload)})
}

// lose simulates paho's connection lost notification.
func (p *fakePaho) lose(err error) {
	p.opts.OnConnectionLost(p, err)
}

func (p *fakePaho) publishedMessages() []fakeMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]fakeMessage(nil), p.published...)
}

func (p *fakePaho) subscriptions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.subscribed...)
}

// fakeFactory returns a Factory whose clients are fakePahos.
func fakeFactory(cfg config.MQTTConfig) (*Factory, *[]*fakePaho) {
	var created []*fakePaho
	f := NewFactory(cfg)
	f.newClient = func(opts *pahomqtt.ClientOptions) pahomqtt.Client {
		p := newFakePaho(opts)
		created = append(created, p)
		return p
	}
	return f, &created
}
