package mqtt

import (
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Factory creates Clients that share one transport configuration.
type Factory struct {
	cfg    config.MQTTConfig
	logger Logger

	// newClient is replaced in tests.
	newClient func(*pahomqtt.ClientOptions) pahomqtt.Client
}

// NewFactory returns a factory for the given transport settings.
func NewFactory(cfg config.MQTTConfig) *Factory {
	return &Factory{
		cfg:       cfg,
		newClient: pahomqtt.NewClient,
	}
}

// SetLogger sets the logger handed to every client created afterwards.
func (f *Factory) SetLogger(logger Logger) {
	f.logger = logger
}

// NewClient builds an unconnected client for host:port. No network I/O
// happens until Connect.
//
// Returns:
//   - *Client: Client ready for Connect
//   - error: ErrInvalidEndpoint or ErrInvalidTransport
func (f *Factory) NewClient(host string, port int, clientID string) (*Client, error) {
	url, err := brokerURL(f.cfg, host, port)
	if err != nil {
		return nil, err
	}

	c := &Client{
		brokerURL: url,
		clientID:  clientID,
		logger:    f.logger,
		done:      make(chan struct{}),
	}

	opts := buildClientOptions(f.cfg, url, clientID)
	opts.SetDefaultPublishHandler(c.dispatch)
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleConnectionLost(err)
	})

	c.client = f.newClient(opts)
	return c, nil
}

// Client is a non-blocking wrapper around one paho client.
//
// Every method returns immediately. Results arrive through the callbacks
// passed to Connect and set with SetOnMessageArrived and SetOnConnectionLost.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Inbound messages are dispatched one at a time in arrival order.
type Client struct {
	client    pahomqtt.Client
	brokerURL string
	clientID  string
	logger    Logger

	onMessage  func(topic, payload string)
	onLost     func(err error)
	callbackMu sync.RWMutex

	// lifeMu orders Connect against Disconnect so a closed client never
	// starts a connection.
	lifeMu sync.Mutex
	closed bool
	done   chan struct{}
}

// BrokerURL returns the address the client connects to.
func (c *Client) BrokerURL() string {
	return c.brokerURL
}

// Connect starts a connection attempt and returns at once.
//
// Exactly one of onSuccess or onFailure runs when the attempt completes.
// If the client is disconnected first, onFailure receives ErrClosed and
// no connection is attempted.
func (c *Client) Connect(onSuccess func(), onFailure func(err error)) {
	c.lifeMu.Lock()
	if c.closed {
		c.lifeMu.Unlock()
		if onFailure != nil {
			onFailure(ErrClosed)
		}
		return
	}
	token := c.client.Connect()
	c.lifeMu.Unlock()

	go func() {
		select {
		case <-token.Done():
		case <-c.done:
			if onFailure != nil {
				onFailure(ErrClosed)
			}
			return
		}

		if err := token.Error(); err != nil {
			if onFailure != nil {
				onFailure(fmt.Errorf("%w: %w", ErrConnectionFailed, err))
			}
			return
		}
		if onSuccess != nil {
			onSuccess()
		}
	}()
}

// Publish sends payload to topic at QoS 0, not retained. Invalid topics
// and transport errors are logged and otherwise ignored.
func (c *Client) Publish(topic, payload string) {
	if err := ValidatePublishTopic(topic); err != nil {
		c.warn("MQTT publish dropped", "topic", topic, "error", err)
		return
	}
	c.watch("publish", topic, c.client.Publish(topic, qos, false, payload))
}

// Subscribe registers a topic filter at QoS 0. Messages matching it are
// passed to the arrival callback.
func (c *Client) Subscribe(filter string) {
	if err := ValidateFilter(filter); err != nil {
		c.warn("MQTT subscribe dropped", "filter", filter, "error", err)
		return
	}
	// A nil handler routes matches through the default publish handler,
	// so overlapping filters still yield one callback per message.
	c.watch("subscribe", filter, c.client.Subscribe(filter, qos, nil))
}

// SetOnMessageArrived sets the callback for inbound messages.
func (c *Client) SetOnMessageArrived(handler func(topic, payload string)) {
	c.callbackMu.Lock()
	c.onMessage = handler
	c.callbackMu.Unlock()
}

// SetOnConnectionLost sets the callback for a connection dropped after a
// successful connect.
func (c *Client) SetOnConnectionLost(handler func(err error)) {
	c.callbackMu.Lock()
	c.onLost = handler
	c.callbackMu.Unlock()
}

// Disconnect closes the connection in the background and abandons any
// pending connect attempt. Calling it more than once is harmless.
func (c *Client) Disconnect() {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	go c.client.Disconnect(defaultDisconnectQuiesce)
}

// watch logs the token's error once it completes.
func (c *Client) watch(op, topic string, token pahomqtt.Token) {
	go func() {
		select {
		case <-token.Done():
		case <-c.done:
			return
		}
		if err := token.Error(); err != nil {
			c.warn("MQTT "+op+" failed", "topic", topic, "error", err)
		}
	}()
}

// dispatch is the default publish handler. It recovers handler panics so a
// faulty callback cannot stop the paho router.
func (c *Client) dispatch(_ pahomqtt.Client, msg pahomqtt.Message) {
	defer func() {
		if r := recover(); r != nil && c.logger != nil {
			c.logger.Error("MQTT handler panic recovered",
				"topic", msg.Topic(),
				"panic", r,
			)
		}
	}()

	c.callbackMu.RLock()
	handler := c.onMessage
	c.callbackMu.RUnlock()

	if handler == nil {
		if c.logger != nil {
			c.logger.Debug("MQTT message without handler", "topic", msg.Topic())
		}
		return
	}
	handler(msg.Topic(), string(msg.Payload()))
}

func (c *Client) handleConnectionLost(err error) {
	c.warn("MQTT connection lost", "broker", c.brokerURL, "client_id", c.clientID, "error", err)

	c.callbackMu.RLock()
	handler := c.onLost
	c.callbackMu.RUnlock()
	if handler != nil {
		handler(err)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
