package host

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Bridge is the set of blocks a program can use. bridge.Adapter satisfies it.
type Bridge interface {
	Configure(host string, port int, clientID string)
	Connect()
	Publish(topic, payload string)
	Subscribe(topic string)
	Connected() bool
	MessageReceived() bool
	NextMessage()
	Topic() string
	Message() string
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Runtime executes a Program one tick at a time.
//
// Thread Safety:
//   - Step and Run may be called from any goroutine; ticks never overlap.
type Runtime struct {
	bridge  Bridge
	program *Program
	logger  Logger

	mu      sync.Mutex
	started bool
	ticks   uint64

	// Predicate values from the previous tick, for edge activation.
	wasConnected bool
	wasReceived  bool

	fired struct {
		connected uint64
		received  uint64
	}
}

// NewRuntime creates a runtime for program. A nil program is empty.
func NewRuntime(b Bridge, program *Program) *Runtime {
	if program == nil {
		program = &Program{}
	}
	return &Runtime{bridge: b, program: program}
}

// SetLogger sets the logger used by log steps and hat tracing.
// Call before the first Step.
func (r *Runtime) SetLogger(logger Logger) {
	r.logger = logger
}

// Run calls Step every interval until ctx is done. It always returns nil.
func (r *Runtime) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / 30
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.Step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Step()
		}
	}
}

// Step performs one tick: the start script on the first tick, then each
// hat whose predicate rose since the previous tick.
func (r *Runtime) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticks++

	if !r.started {
		r.started = true
		r.runScript(r.program.OnStart)
	}

	if len(r.program.WhenConnected) > 0 {
		now := r.bridge.Connected()
		if now && !r.wasConnected {
			r.fired.connected++
			r.trace("when_connected")
			r.runScript(r.program.WhenConnected)
		}
		r.wasConnected = now
	}

	if len(r.program.WhenMessageReceived) > 0 {
		now := r.bridge.MessageReceived()
		if now && !r.wasReceived {
			r.fired.received++
			r.trace("when_message_received")
			r.runScript(r.program.WhenMessageReceived)
		}
		r.wasReceived = now
	}
}

// Ticks returns the number of completed ticks.
func (r *Runtime) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// HatCounts returns how many times each hat script has run.
func (r *Runtime) HatCounts() (connected, received uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fired.connected, r.fired.received
}

func (r *Runtime) runScript(steps []Step) {
	for _, s := range steps {
		r.exec(s)
	}
}

func (r *Runtime) exec(s Step) {
	switch s.Op {
	case OpClient:
		port := s.Port
		if port == 0 {
			port = DefaultPort
		}
		r.bridge.Configure(value(s.Host, DefaultHost), port, value(s.ClientID, DefaultClientID))
	case OpConnect:
		r.bridge.Connect()
	case OpPublish:
		topic := value(s.Topic, DefaultPublishTopic)
		message := value(s.Message, DefaultPublishMessage)
		r.bridge.Publish(r.expand(topic), r.expand(message))
	case OpSubscribe:
		r.bridge.Subscribe(value(s.Topic, DefaultSubscribeTopic))
	case OpNextMessage:
		r.bridge.NextMessage()
	case OpLog:
		if r.logger != nil {
			r.logger.Info(r.expand(s.Text), "tick", r.ticks)
		}
	}
}

// expand substitutes {{topic}} and {{message}} with the current message.
func (r *Runtime) expand(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return strings.NewReplacer(
		"{{topic}}", r.bridge.Topic(),
		"{{message}}", r.bridge.Message(),
	).Replace(s)
}

func (r *Runtime) trace(hat string) {
	if r.logger != nil {
		r.logger.Debug("hat fired", "hat", hat, "tick", r.ticks)
	}
}
