package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nerrad567/mqtt-tickbridge/internal/host"
)

// clientRequest is the body of POST /bridge/client. Omitted fields take
// the client block's defaults.
type clientRequest struct {
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	ClientID *string `json:"client_id"`
}

// publishRequest is the body of POST /bridge/publish.
type publishRequest struct {
	Topic   *string `json:"topic"`
	Message *string `json:"message"`
}

// subscribeRequest is the body of POST /bridge/subscribe.
type subscribeRequest struct {
	Topic *string `json:"topic"`
}

// resolve fills omitted fields with block defaults.
func (c clientRequest) resolve() (string, int, string) {
	hostname, port, clientID := host.DefaultHost, host.DefaultPort, host.DefaultClientID
	if c.Host != nil {
		hostname = *c.Host
	}
	if c.Port != nil {
		port = *c.Port
	}
	if c.ClientID != nil {
		clientID = *c.ClientID
	}
	return hostname, port, clientID
}

func (p publishRequest) resolve() (string, string) {
	topic, message := host.DefaultPublishTopic, host.DefaultPublishMessage
	if p.Topic != nil {
		topic = *p.Topic
	}
	if p.Message != nil {
		message = *p.Message
	}
	return topic, message
}

func (s subscribeRequest) resolve() string {
	if s.Topic != nil {
		return *s.Topic
	}
	return host.DefaultSubscribeTopic
}

// decodeOptional decodes a JSON body into v. An empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ─── Command blocks ────────────────────────────────────────────────

func (s *Server) handleClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeOptional(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	hostname, port, clientID := req.resolve()
	s.bridge.Configure(hostname, port, clientID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnect(w http.ResponseWriter, _ *http.Request) {
	s.bridge.Connect()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeOptional(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	s.bridge.Publish(req.resolve())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeOptional(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	s.bridge.Subscribe(req.resolve())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNextMessage(w http.ResponseWriter, _ *http.Request) {
	s.bridge.NextMessage()
	w.WriteHeader(http.StatusNoContent)
}

// ─── Query blocks ──────────────────────────────────────────────────

func (s *Server) handleConnected(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"connected": s.bridge.Connected()})
}

func (s *Server) handleMessageReceived(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"message_received": s.bridge.MessageReceived()})
}

func (s *Server) handleTopic(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"topic": s.bridge.Topic()})
}

func (s *Server) handleMessage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.bridge.Message()})
}

// handleStatus returns the adapter's stats snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.bridge.Stats())
}
