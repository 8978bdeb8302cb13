package users

import (
	"errors"
	"net/http"

	"Resource-Library/internals/common"
	"Resource-Library/internals/handlers"
	"Resource-Library/internals/render"
	"Resource-Library/internals/sessions"

	"golang.org/x/crypto/bcrypt"
)

// AccountHandler shows the profile form and the caller's resources. Callers
// must be behind middleware.RequireLogin.
func AccountHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who := sessions.IdentityFrom(r.Context())
		user, items, err := d.Accounts.View(r.Context(), who.UserID)
		if errors.Is(err, common.ErrNotFound) {
			// account vanished under a live session
			if err := d.Sessions.Destroy(r.Context(), w, r); err != nil {
				d.Log.WithError(err).Warn("session destroy failed")
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		handlers.Page(w, r, "Account", render.AccountPage(user, items))
	}
}

func UpdateAccountHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			handlers.ClientError(w, http.StatusBadRequest, "Missing")
			return
		}
		who := sessions.IdentityFrom(r.Context())
		err := d.Accounts.Update(r.Context(), who.UserID, r.PostForm.Get("display_name"), r.PostForm.Get("password"))
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			handlers.ClientError(w, http.StatusBadRequest, "Password too long")
			return
		}
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		http.Redirect(w, r, "/account", http.StatusSeeOther)
	}
}
