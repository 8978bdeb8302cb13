// Package resources serves the HTML pages for browsing and editing the
// catalog.
package resources

import (
	"errors"
	"fmt"
	"net/http"

	"Resource-Library/internals/common"
	"Resource-Library/internals/handlers"
	"Resource-Library/internals/models"
	"Resource-Library/internals/render"
	"Resource-Library/internals/services"
	"Resource-Library/internals/sessions"

	"github.com/sirupsen/logrus"
)

type Deps struct {
	Catalog *services.CatalogService
	Log     logrus.FieldLogger
}

func inputFrom(r *http.Request) models.ResourceInput {
	return models.ResourceInput{
		Title:       r.PostForm.Get("title"),
		Type:        r.PostForm.Get("type"),
		Description: r.PostForm.Get("description"),
		Link:        r.PostForm.Get("link"),
	}
}

// HomeHandler lists the catalog, filtered by ?q= when present.
func HomeHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		items, err := d.Catalog.List(r.Context(), q)
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		canAdd := sessions.IdentityFrom(r.Context()).Authenticated()
		handlers.Page(w, r, "Browse Resources", render.ResourceList(q, items, canAdd))
	}
}

func DetailHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(r)
		if !ok {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		detail, err := d.Catalog.Detail(r.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		canEdit := sessions.IdentityFrom(r.Context()).Authenticated()
		handlers.Page(w, r, detail.Title, render.ResourceDetail(detail, canEdit))
	}
}

func AddFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.Page(w, r, "Add Resource", render.AddResourceForm())
	}
}

// AddHandler stores the resource under the signed-in user.
func AddHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			handlers.ClientError(w, http.StatusBadRequest, "Bad request")
			return
		}
		who := sessions.IdentityFrom(r.Context())
		id, err := d.Catalog.Create(r.Context(), inputFrom(r), who.UserID)
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/resource/%d", id), http.StatusSeeOther)
	}
}

func EditFormHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(r)
		if !ok {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		res, err := d.Catalog.Get(r.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		if err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		handlers.Page(w, r, "Edit Resource", render.EditResourceForm(res))
	}
}

// EditHandler lets any signed-in user change any resource. Unknown ids are
// redirected like known ones.
func EditHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(r)
		if !ok {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		if err := r.ParseForm(); err != nil {
			handlers.ClientError(w, http.StatusBadRequest, "Bad request")
			return
		}
		if err := d.Catalog.Update(r.Context(), id, inputFrom(r)); err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/resource/%d", id), http.StatusSeeOther)
	}
}

func DeleteHandler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(r)
		if !ok {
			handlers.ClientError(w, http.StatusNotFound, "Not found")
			return
		}
		if err := d.Catalog.Delete(r.Context(), id); err != nil {
			handlers.ServerError(w, r, d.Log, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
