package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/mqtt-tickbridge/internal/journal"
)

// journalResponse is the body of GET /journal.
type journalResponse struct {
	Entries []journal.Entry `json:"entries"`
	Stats   journal.Stats   `json:"stats"`
}

// handleJournal lists the most recently consumed messages, newest first.
// The limit query parameter defaults to 50 and is capped at 200.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, ErrCodeJournalDisabled, "message journal is disabled")
		return
	}

	limit := journal.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("journal query failed", "error", err)
		writeInternalError(w, "failed to read journal")
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}

	writeJSON(w, http.StatusOK, journalResponse{
		Entries: entries,
		Stats:   s.journal.Stats(),
	})
}
