//go:build integration

package mqtt

import (
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/mqtt-tickbridge/internal/infrastructure/config"
)

// Integration tests against a real broker.
// These tests require a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func integrationConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Transport:      "tcp",
		ConnectTimeout: 5,
		KeepAlive:      30,
	}
}

// connectOrFail starts a connection and waits for its outcome.
func connectOrFail(t *testing.T, c *Client) {
	t.Helper()
	result := make(chan error, 1)
	c.Connect(func() { result <- nil }, func(err error) { result <- err })

	select {
	case err := <-result:
		if err != nil {
			t.Fatalf("Connect() failed: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Connect() did not complete")
	}
}

// TestIntegration_MessageRoundtrip verifies pub/sub works end-to-end.
func TestIntegration_MessageRoundtrip(t *testing.T) {
	f := NewFactory(integrationConfig())

	sub, err := f.NewClient("127.0.0.1", 1883, "tickbridge-int-sub")
	if err != nil {
		t.Fatalf("NewClient() subscriber error = %v", err)
	}
	defer sub.Disconnect()

	pub, err := f.NewClient("127.0.0.1", 1883, "tickbridge-int-pub")
	if err != nil {
		t.Fatalf("NewClient() publisher error = %v", err)
	}
	defer pub.Disconnect()

	received := make(chan string, 10)
	sub.SetOnMessageArrived(func(topic, payload string) {
		received <- topic + "=" + payload
	})

	connectOrFail(t, sub)
	connectOrFail(t, pub)

	sub.Subscribe("tickbridge/int/#")
	time.Sleep(200 * time.Millisecond)

	pub.Publish("tickbridge/int/a", "1")
	pub.Publish("tickbridge/int/b", "2")

	for _, want := range []string{"tickbridge/int/a=1", "tickbridge/int/b=2"} {
		select {
		case got := <-received:
			if got != want {
				t.Errorf("received %q, want %q", got, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for %q", want)
		}
	}
}

// TestIntegration_ConnectRefused verifies failure is reported through the callback.
func TestIntegration_ConnectRefused(t *testing.T) {
	f := NewFactory(integrationConfig())

	c, err := f.NewClient("127.0.0.1", 19999, "tickbridge-int-refused")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Disconnect()

	result := make(chan error, 1)
	c.Connect(func() { result <- nil }, func(err error) { result <- err })

	select {
	case err := <-result:
		if !errors.Is(err, ErrConnectionFailed) {
			t.Errorf("Connect() result = %v, want ErrConnectionFailed", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Connect() did not complete")
	}
}
