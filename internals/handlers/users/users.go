package users

import (
	"errors"
	"net/http"

	"Resource-Library/internals/common"
	"Resource-Library/internals/handlers"
	"Resource-Library/internals/metrics"
	"Resource-Library/internals/models"
	"Resource-Library/internals/render"
	"Resource-Library/internals/services"
	"Resource-Library/internals/sessions"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Deps is what the account handlers need from the rest of the app.
type Deps struct {
	Auth     *services.AuthService
	Accounts *services.AccountService
	Sessions *sessions.Manager
	Metrics  *metrics.Metrics // optional
	Log      logrus.FieldLogger
}

func (d Deps) attempt(kind, result string) {
	if d.Metrics != nil {
		d.Metrics.AuthAttempt(kind, result)
	}
}

// signIn starts a fresh session for u and sends the browser home.
func (d Deps) signIn(w http.ResponseWriter, r *http.Request, u *models.User) {
	if _, err := d.Sessions.Start(r.Context(), w, r, models.Identity{UserID: u.ID, Username: u.Username}); err != nil {
		handlers.ServerError(w, r, d.Log, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func RegisterFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.Page(w, r, "Register", render.RegisterForm())
	}
}

// RegisterHandler creates the account and signs the new user in.
func RegisterHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			handlers.ClientError(w, http.StatusBadRequest, "Missing")
			return
		}
		user, err := d.Auth.Register(r.Context(),
			r.PostForm.Get("username"), r.PostForm.Get("password"), r.PostForm.Get("display_name"))
		switch {
		case err == nil:
		case errors.Is(err, common.ErrMissingFields):
			d.attempt("register", "invalid")
			handlers.ClientError(w, http.StatusBadRequest, "Missing")
			return
		case errors.Is(err, common.ErrUserExists):
			d.attempt("register", "duplicate")
			handlers.ClientError(w, http.StatusBadRequest, "Username already exists")
			return
		case errors.Is(err, bcrypt.ErrPasswordTooLong):
			d.attempt("register", "invalid")
			handlers.ClientError(w, http.StatusBadRequest, "Password too long")
			return
		default:
			d.attempt("register", "error")
			handlers.ServerError(w, r, d.Log, err)
			return
		}

		d.attempt("register", "success")
		d.Log.WithField("user_id", user.ID).Info("user registered")
		d.signIn(w, r, user)
	}
}

func LoginFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.Page(w, r, "Login", render.LoginForm())
	}
}

// LoginHandler gives unknown users and wrong passwords the same answer.
func LoginHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			handlers.ClientError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		user, err := d.Auth.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
		if errors.Is(err, common.ErrInvalidCredentials) {
			d.attempt("login", "rejected")
			handlers.ClientError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		if err != nil {
			d.attempt("login", "error")
			handlers.ServerError(w, r, d.Log, err)
			return
		}

		d.attempt("login", "success")
		d.signIn(w, r, user)
	}
}

func LogoutHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Sessions.Destroy(r.Context(), w, r); err != nil {
			// the cookie is already cleared; the stale row expires on its own
			d.Log.WithError(err).Warn("session destroy failed")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
