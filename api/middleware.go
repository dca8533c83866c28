package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/karlisv/fplbrief/session"
)

// SessionCookie is the browser cookie carrying the opaque session id.
const SessionCookie = "fplbrief_session"

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxSessionID
	ctxSession
)

// RequestID tags every request with a correlation id for the logs and
// the X-Request-Id response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		slog.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxRequestID, id)))
	})
}

// RequireSession loads the caller's session from the store and rejects
// the request when there is none. Loading slides the session's expiry
// forward. The session and its id travel in the request context.
func (h *Handlers) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not logged in"})
			return
		}
		sess, ok := h.Store.Get(cookie.Value)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "session expired", SessionExpired: true})
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionID, cookie.Value)
		ctx = context.WithValue(ctx, ctxSession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) (string, *session.Session) {
	id, _ := r.Context().Value(ctxSessionID).(string)
	sess, _ := r.Context().Value(ctxSession).(*session.Session)
	return id, sess
}
