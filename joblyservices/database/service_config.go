package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"
)

type ServiceConfigFunc func(service *Service) error

func WithPostConnectFunc(callback func(db *sql.DB) error) ServiceConfigFunc {
	return func(service *Service) error {
		return callback(service.standardLibraryDB)
	}
}

func WithPreRunFunc(preRunFunc func(ctx context.Context, statement string, args []any) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, preRunFunc)
		return nil
	}
}

func WithPostRunFunc(postRunFunc func(ctx context.Context, statement string, err error) error) ServiceConfigFunc {
	return func(service *Service) error {
		service.postRunFuncs = append(service.postRunFuncs, postRunFunc)
		return nil
	}
}

func WithConnectionLimits(maxOpen int, maxIdle int, maxLifetime time.Duration) ServiceConfigFunc {
	return WithPostConnectFunc(func(db *sql.DB) error {
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxIdle)
		db.SetConnMaxLifetime(maxLifetime)

		return nil
	})
}

func WithLogger(logger *slog.Logger) ServiceConfigFunc {
	return func(service *Service) error {
		service.preRunFuncs = append(service.preRunFuncs, func(ctx context.Context, statement string, args []any) error {
			logger.DebugContext(ctx, "Database Run",
				"statement", statement,
				"args", args,
			)

			return nil
		})
		service.postRunFuncs = append(service.postRunFuncs, func(ctx context.Context, statement string, err error) error {
			if err != nil {
				logger.WarnContext(ctx, "Database Run Failed",
					"statement", statement,
					"error", err,
				)
			}

			return nil
		})
		return nil
	}
}
