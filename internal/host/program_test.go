package host

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProgram_Defaults(t *testing.T) {
	p, err := ParseProgram([]byte(`
on_start:
  - op: client
  - op: connect
when_connected:
  - op: subscribe
when_message_received:
  - op: next_message
  - op: publish
`))
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	client := p.OnStart[0]
	if *client.Host != DefaultHost || client.Port != DefaultPort || *client.ClientID != DefaultClientID {
		t.Errorf("client step = %+v, want defaults localhost:8080 scratch", client)
	}
	if got := *p.WhenConnected[0].Topic; got != DefaultSubscribeTopic {
		t.Errorf("subscribe topic = %q, want %q", got, DefaultSubscribeTopic)
	}
	pub := p.WhenMessageReceived[1]
	if *pub.Topic != DefaultPublishTopic || *pub.Message != DefaultPublishMessage {
		t.Errorf("publish step = %q/%q, want topic/message", *pub.Topic, *pub.Message)
	}
}

func TestParseProgram_ExplicitValues(t *testing.T) {
	p, err := ParseProgram([]byte(`
on_start:
  - op: client
    host: broker.local
    port: 9001
    client_id: ""
  - op: publish
    topic: status
    message: ""
`))
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	client := p.OnStart[0]
	if *client.Host != "broker.local" || client.Port != 9001 {
		t.Errorf("client step = %+v", client)
	}
	if client.ClientID == nil || *client.ClientID != "" {
		t.Error("explicit empty client_id replaced by default")
	}
	if msg := p.OnStart[1].Message; msg == nil || *msg != "" {
		t.Error("explicit empty message replaced by default")
	}
}

func TestParseProgram_ExplicitEmptyStrings(t *testing.T) {
	p, err := ParseProgram([]byte(`
on_start:
  - op: client
    host: ""
  - op: subscribe
    topic: ""
  - op: publish
    topic: ""
`))
	if err != nil {
		t.Fatalf("ParseProgram() error = %v", err)
	}

	if h := p.OnStart[0].Host; h == nil || *h != "" {
		t.Error("explicit empty host replaced by default")
	}
	for _, i := range []int{1, 2} {
		if topic := p.OnStart[i].Topic; topic == nil || *topic != "" {
			t.Errorf("step %d: explicit empty topic replaced by default", i)
		}
	}
}

func TestParseProgram_Empty(t *testing.T) {
	p, err := ParseProgram(nil)
	if err != nil {
		t.Fatalf("ParseProgram(nil) error = %v", err)
	}
	if len(p.OnStart)+len(p.WhenConnected)+len(p.WhenMessageReceived) != 0 {
		t.Errorf("empty program has steps: %+v", p)
	}
}

func TestParseProgram_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown op",
			yaml:    "on_start:\n  - op: teleport\n",
			wantErr: ErrUnknownOp,
			wantMsg: "on_start[0]",
		},
		{
			name:    "missing op",
			yaml:    "when_connected:\n  - topic: x\n",
			wantErr: ErrUnknownOp,
			wantMsg: "when_connected[0]",
		},
		{
			name:    "port out of range",
			yaml:    "on_start:\n  - op: client\n    port: 70000\n",
			wantErr: ErrInvalidProgram,
			wantMsg: "port 70000",
		},
		{
			name:    "unknown key",
			yaml:    "on_start:\n  - op: client\n    hots: typo\n",
			wantMsg: "hots",
		},
		{
			name:    "unknown script",
			yaml:    "when_clicked:\n  - op: connect\n",
			wantMsg: "when_clicked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProgram([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParseProgram() = nil error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseProgram() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("ParseProgram() error = %q, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yaml")
	if err := os.WriteFile(path, []byte("on_start:\n  - op: connect\n"), 0600); err != nil {
		t.Fatalf("writing program: %v", err)
	}

	p, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram() error = %v", err)
	}
	if len(p.OnStart) != 1 || p.OnStart[0].Op != OpConnect {
		t.Errorf("OnStart = %+v", p.OnStart)
	}

	if _, err := LoadProgram(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadProgram() of missing file = nil error")
	}
}

func TestLoadProgram_ShippedExample(t *testing.T) {
	p, err := LoadProgram(filepath.Join("..", "..", "configs", "program.yaml"))
	if err != nil {
		t.Fatalf("LoadProgram(configs/program.yaml) error = %v", err)
	}
	if len(p.OnStart) == 0 || len(p.WhenMessageReceived) == 0 {
		t.Error("shipped program should have a start script and a message hat")
	}
}
