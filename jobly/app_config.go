package jobly

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/queue"
	"github.com/lunagic/jobly/joblyservices/vault"
	"github.com/lunagic/poseidon/poseidon"
)

type AppConfigFunc func(app *App) error

func WithLogger(logger *slog.Logger) AppConfigFunc {
	return func(app *App) error {
		app.logger = logger

		return nil
	}
}

func WithModels(models joblymodels.Models) AppConfigFunc {
	return func(app *App) error {
		app.models = models

		return nil
	}
}

// WithVault enables the admin routes, which need a bearer token sealed by v.
func WithVault(v vault.Vault) AppConfigFunc {
	return func(app *App) error {
		app.vault = &v

		return nil
	}
}

func WithHandler(pattern string, handler http.Handler) AppConfigFunc {
	return func(app *App) error {
		app.handlers[pattern] = handler

		return nil
	}
}

func WithMiddlewares(middlewares poseidon.Middlewares) AppConfigFunc {
	return func(app *App) error {
		app.middlewares = middlewares

		return nil
	}
}

func WithDatabaseAutoMigration(db *database.Service, entities []database.Entity) AppConfigFunc {
	return func(app *App) error {
		app.database = db
		app.databaseAutoMigrationEntities = entities

		return nil
	}
}

func WithTypeScriptOutput(namespace string, writer io.Writer) AppConfigFunc {
	return func(app *App) error {
		app.typeScript.namespace = namespace
		app.typeScript.fileWriter = writer

		return nil
	}
}

// WithQueue consumes q in the background until ctx is done. Consuming starts
// once NewApp has succeeded.
func WithQueue[T any](
	ctx context.Context,
	q queue.Queue[T],
	handler queue.Handler[T],
) AppConfigFunc {
	return func(app *App) error {
		app.consumers = append(app.consumers, func() {
			go func() {
				if err := q.Consume(ctx, handler); err != nil {
					app.logger.ErrorContext(ctx, "Queue Consumer Stopped",
						"queue", q.Name(),
						"error", err,
					)
				}
			}()
		})

		return nil
	}
}

// LogJobEvents is a queue handler that writes every job event to logger.
func LogJobEvents(logger *slog.Logger) queue.Handler[joblymodels.JobEvent] {
	return func(ctx context.Context, event joblymodels.JobEvent) error {
		logger.InfoContext(ctx, "Job Event",
			"type", event.Type,
			"id", event.Job.ID,
			"companyHandle", event.Job.CompanyHandle,
			"at", event.At,
		)

		return nil
	}
}

// LogRequests logs every request once it has been served.
func LogRequests(logger *slog.Logger) poseidon.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.DebugContext(r.Context(), "Request Served",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}
