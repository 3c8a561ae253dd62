package jobly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/vault"
	"github.com/lunagic/poseidon/poseidon"
)

var ErrMissingModels = errors.New("app needs models, see WithModels")

func NewApp(
	ctx context.Context,
	config AppConfig,
	configFuncs ...AppConfigFunc,
) (
	*App,
	error,
) {
	app := &App{
		config:   config,
		handlers: map[string]http.Handler{},
		logger:   slog.Default(),
	}

	for _, configFunc := range configFuncs {
		if err := configFunc(app); err != nil {
			return nil, err
		}
	}

	if app.models.Jobs == nil || app.models.Companies == nil || app.models.Users == nil {
		return nil, ErrMissingModels
	}

	if app.database != nil {
		changes, err := app.database.AutoMigrate(ctx, app.databaseAutoMigrationEntities)
		if err != nil {
			return nil, err
		}

		if changes > 0 {
			app.logger.InfoContext(ctx, "Database Migrated", "statements", changes)
		}
	}

	if err := app.generateTypeScript(); err != nil {
		return nil, err
	}

	for _, route := range app.routes() {
		var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := route.Handler(w, r); err != nil {
				app.respondError(w, r, err)
			}
		})

		if route.Admin {
			handler = app.requireAdmin(handler)
		}

		app.handlers[route.Pattern()] = handler
	}

	// Consumers only start once nothing else can fail
	for _, startConsumer := range app.consumers {
		startConsumer()
	}

	return app, nil
}

type App struct {
	config                        AppConfig
	logger                        *slog.Logger
	models                        joblymodels.Models
	consumers                     []func()
	vault                         *vault.Vault
	database                      *database.Service
	databaseAutoMigrationEntities []database.Entity
	typeScript                    typeScriptConfig
	handlers                      map[string]http.Handler
	middlewares                   poseidon.Middlewares
}

// Serve the application over HTTP until ctx is done
func (app *App) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", app.config.ListenAddr())
	if err != nil {
		return err
	}

	app.logger.InfoContext(ctx,
		"Server Listen on HTTP",
		"addr", fmt.Sprintf("http://%s", strings.ReplaceAll(listener.Addr().String(), "[::]", "0.0.0.0")),
	)

	server := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (app *App) Handler() http.Handler {
	mux := http.NewServeMux()

	for pattern, handler := range app.handlers {
		mux.Handle(pattern, handler)
	}

	return app.middlewares.Apply(mux)
}
