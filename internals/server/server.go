// Package server wires the handlers into a router and an http.Server.
package server

import (
	stdlog "log"
	"net/http"
	"time"

	"Resource-Library/internals/config"
	"Resource-Library/internals/handlers/api"
	"Resource-Library/internals/handlers/live"
	"Resource-Library/internals/handlers/resources"
	"Resource-Library/internals/handlers/users"
	"Resource-Library/internals/metrics"
	"Resource-Library/internals/middleware"
	"Resource-Library/internals/services"
	"Resource-Library/internals/sessions"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Config   *config.Config
	Log      *logrus.Logger
	Auth     *services.AuthService
	Accounts *services.AccountService
	Catalog  *services.CatalogService
	Sessions *sessions.Manager
	Metrics  *metrics.Metrics
	Hub      *live.Hub
}

// NewRouter builds the full route table.
func NewRouter(d Deps) (http.Handler, error) {
	limiter, err := middleware.NewRateLimiter(d.Config.LoginRateLimit(), d.Config.RateLimit.Burst, d.Log)
	if err != nil {
		return nil, err
	}

	userDeps := users.Deps{Auth: d.Auth, Accounts: d.Accounts, Sessions: d.Sessions, Metrics: d.Metrics, Log: d.Log}
	resDeps := resources.Deps{Catalog: d.Catalog, Log: d.Log}
	auth := middleware.RequireLogin

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	r.Use(middleware.Instrument(d.Metrics), d.Sessions.Middleware)

	r.Handle("/", resources.HomeHandler(resDeps)).Methods(http.MethodGet)
	r.Handle("/resource/{id:[0-9]+}", resources.DetailHandler(resDeps)).Methods(http.MethodGet)
	r.Handle("/add", auth(resources.AddFormHandler())).Methods(http.MethodGet)
	r.Handle("/add", auth(resources.AddHandler(resDeps))).Methods(http.MethodPost)
	r.Handle("/resource/{id:[0-9]+}/edit", auth(resources.EditFormHandler(resDeps))).Methods(http.MethodGet)
	r.Handle("/resource/{id:[0-9]+}/edit", auth(resources.EditHandler(resDeps))).Methods(http.MethodPost)
	r.Handle("/resource/{id:[0-9]+}/delete", auth(resources.DeleteHandler(resDeps))).Methods(http.MethodGet)

	r.Handle("/register", users.RegisterFormHandler()).Methods(http.MethodGet)
	r.Handle("/register", limiter.Limit(users.RegisterHandler(userDeps))).Methods(http.MethodPost)
	r.Handle("/login", users.LoginFormHandler()).Methods(http.MethodGet)
	r.Handle("/login", limiter.Limit(users.LoginHandler(userDeps))).Methods(http.MethodPost)
	r.Handle("/logout", users.LogoutHandler(userDeps)).Methods(http.MethodGet)
	r.Handle("/account", auth(users.AccountHandler(userDeps))).Methods(http.MethodGet)
	r.Handle("/account", auth(users.UpdateAccountHandler(userDeps))).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: d.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(c.Handler)
	apiRouter.Handle("/resources", api.ListHandler(d.Catalog, d.Log)).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.Handle("/resources/{id}", api.GetHandler(d.Catalog, d.Log)).Methods(http.MethodGet, http.MethodOptions)

	r.HandleFunc("/ws/resources", d.Hub.HandleFeed).Methods(http.MethodGet)
	r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)

	return middleware.RequestLogger(d.Log)(r), nil
}

// New returns the HTTP server for cfg. Write timeouts do not affect the
// live feed, whose connections manage their own deadlines once hijacked.
func New(cfg *config.Config, handler http.Handler, log *logrus.Logger) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          stdlog.New(log.WriterLevel(logrus.ErrorLevel), "", 0),
	}
}
