// Package api serves the read-only JSON view of the catalog.
package api

import (
	"errors"
	"net/http"

	"Resource-Library/internals/common"
	"Resource-Library/internals/handlers"
	"Resource-Library/internals/middleware"
	"Resource-Library/internals/models"
	"Resource-Library/internals/services"

	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error string `json:"error"`
}

func ListHandler(catalog *services.CatalogService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := catalog.List(r.Context(), "")
		if err != nil {
			middleware.Logger(r.Context(), log).WithError(err).Error("list resources")
			handlers.JSON(w, http.StatusInternalServerError, errorBody{Error: "db"})
			return
		}
		if items == nil {
			items = []models.Resource{}
		}
		handlers.JSON(w, http.StatusOK, items)
	}
}

func GetHandler(catalog *services.CatalogService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := handlers.PathID(r)
		if !ok {
			handlers.JSON(w, http.StatusNotFound, errorBody{Error: "not found"})
			return
		}
		res, err := catalog.Get(r.Context(), id)
		if errors.Is(err, common.ErrNotFound) {
			handlers.JSON(w, http.StatusNotFound, errorBody{Error: "not found"})
			return
		}
		if err != nil {
			middleware.Logger(r.Context(), log).WithError(err).Error("get resource")
			handlers.JSON(w, http.StatusInternalServerError, errorBody{Error: "db"})
			return
		}
		handlers.JSON(w, http.StatusOK, res)
	}
}
