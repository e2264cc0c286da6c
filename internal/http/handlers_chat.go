package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"unicode/utf8"

	"mfdist/internal/chat"
	applog "mfdist/internal/log"
	"mfdist/internal/session"
)

// exchange appends text and the bot reply to the session transcript.
// Blank text leaves the transcript unchanged and returns an empty reply.
func (s *Server) exchange(ctx context.Context, sessionID, text string) (chat.Transcript, string, error) {
	var reply string
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		reply = sess.Transcript.Exchange(text, s.now())
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("update session: %w", err)
	}
	if reply != "" {
		atomic.AddInt64(&s.appMetrics.chatMessages, 1)
		s.events.LogChat(ctx, sessionID, utf8.RuneCountInString(text))
	}
	return sess.Transcript, reply, nil
}

// handleChat answers the chat form. Without htmx it redirects back to the
// dashboard, which renders the updated transcript.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.events.LogError(r.Context(), "Session unavailable", err, applog.ComponentSession, applog.OpRead, nil)
		InternalServerError("Chat is unavailable right now").Write(w)
		return
	}

	transcript, _, err := s.exchange(r.Context(), sess.ID, sanitizeInput(r.Form.Get("message")))
	if err != nil {
		s.events.LogError(r.Context(), "Chat exchange failed", err, applog.ComponentChat, applog.OpReply,
			applog.NewFields().WithSessionID(sess.ID))
		InternalServerError("Chat is unavailable right now").Write(w)
		return
	}

	if !IsHTMX(r) {
		http.Redirect(w, r, "/#chat", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().
		TriggerChatUpdated(len(transcript)).
		TriggerFormReset()
	s.renderPage(w, r, b, "chat", transcript)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply      string          `json:"reply"`
	Transcript chat.Transcript `json:"transcript"`
}

// handleAPIChat is the JSON form of handleChat.
func (s *Server) handleAPIChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req := chatRequest{Message: p.Get("message")}
	if req.Message == "" {
		writeJSONError(w, http.StatusUnprocessableEntity, "message is required")
		return
	}

	sess, err := s.session(w, r)
	if err != nil {
		s.events.LogError(r.Context(), "Session unavailable", err, applog.ComponentSession, applog.OpRead, nil)
		writeJSONError(w, http.StatusInternalServerError, "session unavailable")
		return
	}

	transcript, reply, err := s.exchange(r.Context(), sess.ID, req.Message)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotFound) {
			status = http.StatusConflict
		}
		s.events.LogError(r.Context(), "Chat exchange failed", err, applog.ComponentChat, applog.OpReply,
			applog.NewFields().WithSessionID(sess.ID))
		writeJSONError(w, status, "chat unavailable")
		return
	}

	if transcript == nil {
		transcript = chat.Transcript{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Transcript: transcript})
}
