package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op names a step operation.
type Op string

// Step operations, one per bridge block plus log.
const (
	OpClient      Op = "client"
	OpConnect     Op = "connect"
	OpPublish     Op = "publish"
	OpSubscribe   Op = "subscribe"
	OpNextMessage Op = "next_message"
	OpLog         Op = "log"
)

// Block defaults for omitted step arguments.
const (
	DefaultHost           = "localhost"
	DefaultPort           = 8080
	DefaultClientID       = "scratch"
	DefaultSubscribeTopic = "#"
	DefaultPublishTopic   = "topic"
	DefaultPublishMessage = "message"
)

// maxSteps bounds the length of one script.
const maxSteps = 1000

// Step is one block in a script. Arguments left out take the block default;
// an explicit empty string is kept.
//
// Defaults:
//   - client: host "localhost", port 8080, client_id "scratch"
//   - subscribe: topic "#"
//   - publish: topic "topic", message "message"
//
// publish topic and message, and log text, may contain {{topic}} and
// {{message}}, replaced with the current message when the step runs.
type Step struct {
	Op       Op      `yaml:"op"`
	Host     *string `yaml:"host,omitempty"`
	Port     int     `yaml:"port,omitempty"`
	ClientID *string `yaml:"client_id,omitempty"`
	Topic    *string `yaml:"topic,omitempty"`
	Message  *string `yaml:"message,omitempty"`
	Text     string  `yaml:"text,omitempty"`
}

// Program is a start script plus two hat scripts.
type Program struct {
	OnStart             []Step `yaml:"on_start"`
	WhenConnected       []Step `yaml:"when_connected"`
	WhenMessageReceived []Step `yaml:"when_message_received"`
}

// LoadProgram reads and validates a program file.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file: %w", err)
	}
	return ParseProgram(data)
}

// ParseProgram decodes YAML, rejecting unknown keys, and applies defaults.
// An empty document is an empty program.
func ParseProgram(data []byte) (*Program, error) {
	p := &Program{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing program: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return p, nil
}

// Validate checks every step of every script.
func (p *Program) Validate() error {
	var errs []string

	for _, script := range p.scripts() {
		if len(script.steps) > maxSteps {
			errs = append(errs, fmt.Sprintf("%s: more than %d steps", script.name, maxSteps))
			continue
		}
		for i, step := range script.steps {
			if err := step.validate(); err != nil {
				errs = append(errs, fmt.Sprintf("%s[%d]: %v", script.name, i, err))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProgram, strings.Join(errs, "; "))
	}
	return nil
}

func (s Step) validate() error {
	switch s.Op {
	case OpClient:
		if s.Port < 0 || s.Port > 65535 {
			return fmt.Errorf("port %d out of range", s.Port)
		}
	case OpConnect, OpNextMessage:
	case OpPublish, OpSubscribe:
		if s.Topic != nil && strings.ContainsRune(*s.Topic, 0) {
			return fmt.Errorf("topic contains NUL")
		}
	case OpLog:
	case "":
		return fmt.Errorf("%w: op is required", ErrUnknownOp)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	return nil
}

func (p *Program) applyDefaults() {
	for _, script := range p.scripts() {
		for i := range script.steps {
			script.steps[i].applyDefaults()
		}
	}
}

func (s *Step) applyDefaults() {
	switch s.Op {
	case OpClient:
		s.Host = withDefault(s.Host, DefaultHost)
		if s.Port == 0 {
			s.Port = DefaultPort
		}
		s.ClientID = withDefault(s.ClientID, DefaultClientID)
	case OpSubscribe:
		s.Topic = withDefault(s.Topic, DefaultSubscribeTopic)
	case OpPublish:
		s.Topic = withDefault(s.Topic, DefaultPublishTopic)
		s.Message = withDefault(s.Message, DefaultPublishMessage)
	}
}

func withDefault(v *string, def string) *string {
	if v != nil {
		return v
	}
	return &def
}

// value returns *v, or def when v is nil.
func value(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

type namedScript struct {
	name  string
	steps []Step
}

func (p *Program) scripts() []namedScript {
	return []namedScript{
		{name: "on_start", steps: p.OnStart},
		{name: "when_connected", steps: p.WhenConnected},
		{name: "when_message_received", steps: p.WhenMessageReceived},
	}
}
