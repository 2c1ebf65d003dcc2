package mqtt

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout applies when the config leaves connect_timeout at zero.
	defaultConnectTimeout = 30 * time.Second

	// defaultKeepAlive applies when the config leaves keep_alive at zero.
	defaultKeepAlive = 60 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultWebSocketPath is used for ws transport when no path is configured.
	defaultWebSocketPath = "/mqtt"

	// qos is the only quality of service level used for publish and subscribe.
	qos byte = 0
)

// brokerURL builds the broker address for the configured transport.
//
//	ws:  ws://host:port/mqtt
//	tcp: tcp://host:port
func brokerURL(cfg config.MQTTConfig, host string, port int) (string, error) {
	if host == "" || port < 1 || port > 65535 {
		return "", fmt.Errorf("%w: %q:%d", ErrInvalidEndpoint, host, port)
	}
	hostPort := net.JoinHostPort(host, strconv.Itoa(port))

	switch strings.ToLower(cfg.Transport) {
	case "", "ws":
		path := cfg.Path
		if path == "" {
			path = defaultWebSocketPath
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "ws://" + hostPort + path, nil
	case "tcp":
		return "tcp://" + hostPort, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransport, cfg.Transport)
	}
}

// buildClientOptions creates paho MQTT options for one client.
//
// This configures:
//   - Broker URL for the transport
//   - Client ID and optional credentials
//   - Clean session with ordered delivery
//   - A single connect attempt; reconnect after loss only if enabled
func buildClientOptions(cfg config.MQTTConfig, url, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(url)
	opts.SetClientID(clientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// Messages are handed to the arrival callback one at a time, in order.
	opts.SetOrderMatters(true)

	opts.SetConnectRetry(false)
	opts.SetAutoReconnect(cfg.AutoReconnect)

	connectTimeout := defaultConnectTimeout
	if cfg.ConnectTimeout > 0 {
		connectTimeout = time.Duration(cfg.ConnectTimeout) * time.Second
	}
	opts.SetConnectTimeout(connectTimeout)

	keepAlive := defaultKeepAlive
	if cfg.KeepAlive > 0 {
		keepAlive = time.Duration(cfg.KeepAlive) * time.Second
	}
	opts.SetKeepAlive(keepAlive)

	return opts
}
