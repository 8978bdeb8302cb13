// Package handlers holds the response helpers shared by the HTTP handler
// packages beneath it.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Resource-Library/internals/middleware"
	"Resource-Library/internals/render"
	"Resource-Library/internals/sessions"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Page writes body wrapped in the site layout for the requesting user.
func Page(w http.ResponseWriter, r *http.Request, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(render.Page(title, body, sessions.IdentityFrom(r.Context()))))
}

// ClientError writes a short plain-text message with the given status.
func ClientError(w http.ResponseWriter, status int, msg string) {
	http.Error(w, msg, status)
}

// ServerError logs err and answers with the generic store failure text.
func ServerError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	middleware.Logger(r.Context(), log).WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	http.Error(w, "DB error", http.StatusInternalServerError)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// PathID returns the {id} route variable. It reports false for anything
// that is not a positive int64, so callers answer those with a 404.
func PathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
