package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lunagic/jobly/jobly"
	"github.com/lunagic/jobly/joblymodels"
	"github.com/lunagic/jobly/joblyservices/cache"
	"github.com/lunagic/jobly/joblyservices/database"
	"github.com/lunagic/jobly/joblyservices/queue"
	"github.com/lunagic/poseidon/poseidon"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	config, err := jobly.LoadConfig()
	if err != nil {
		fatalf("config: %v", err)
	}

	logger, err := config.Logger(os.Stderr)
	if err != nil {
		fatalf("logger: %v", err)
	}
	slog.SetDefault(logger)

	switch command {
	case "serve":
		err = serve(ctx, config, logger)
	case "migrate":
		err = migrate(ctx, config, logger)
	case "token":
		err = token(ctx, config, args)
	case "typescript":
		err = typeScript(ctx, config, args)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fatalf("%s failed: %v", command, err)
	}
}

func serve(ctx context.Context, config jobly.AppConfig, logger *slog.Logger) error {
	service, err := config.Database(
		database.WithLogger(logger),
		database.WithConnectionLimits(10, 5, time.Hour),
	)
	if err != nil {
		return err
	}
	defer service.Close()

	if err := service.Ping(ctx); err != nil {
		return err
	}

	cacheDriver, err := config.Cache(ctx)
	if err != nil {
		return err
	}
	defer cacheDriver.Close()

	// Reads fall back to the database while the cache is away
	if err := cacheDriver.Ping(ctx); err != nil {
		logger.WarnContext(ctx, "Cache Unreachable",
			"driver", config.AppDriverCache,
			"error", err,
		)
	}

	queueDriver, err := config.Queue()
	if err != nil {
		return err
	}
	defer queueDriver.Close()

	events, err := queue.NewQueue[joblymodels.JobEvent](ctx, queueDriver, "jobs")
	if err != nil {
		return err
	}

	models, err := joblymodels.New(
		service,
		joblymodels.WithJobCache(cache.NewRepository[int64, joblymodels.Job](cacheDriver, "job", config.CacheTTL())),
		joblymodels.WithJobEvents(events),
		joblymodels.WithJobLogger(logger),
	)
	if err != nil {
		return err
	}

	configFuncs := []jobly.AppConfigFunc{
		jobly.WithLogger(logger),
		jobly.WithModels(models),
		jobly.WithDatabaseAutoMigration(service, joblymodels.Entities()),
		jobly.WithQueue(ctx, events, jobly.LogJobEvents(logger)),
		jobly.WithMiddlewares(poseidon.Middlewares{jobly.LogRequests(logger)}),
	}

	if config.AppKey != "" {
		v, err := config.Vault()
		if err != nil {
			return err
		}
		configFuncs = append(configFuncs, jobly.WithVault(v))
	} else {
		logger.WarnContext(ctx, "APP_KEY is not set, admin routes are disabled")
	}

	app, err := jobly.NewApp(ctx, config, configFuncs...)
	if err != nil {
		return err
	}

	return app.Serve(ctx)
}

func migrate(ctx context.Context, config jobly.AppConfig, logger *slog.Logger) error {
	service, err := config.Database(database.WithLogger(logger))
	if err != nil {
		return err
	}
	defer service.Close()

	changes, err := service.AutoMigrate(ctx, joblymodels.Entities())
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Database Migrated", "statements", changes)

	return nil
}

// token prints a bearer token for an existing user.
func token(ctx context.Context, config jobly.AppConfig, args []string) error {
	flags := flag.NewFlagSet("token", flag.ExitOnError)
	username := flags.String("username", "", "user to issue the token for")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("-username is required")
	}

	v, err := config.Vault()
	if err != nil {
		return err
	}

	service, err := config.Database()
	if err != nil {
		return err
	}
	defer service.Close()

	users, err := joblymodels.NewUserModel(service)
	if err != nil {
		return err
	}

	user, err := users.Get(ctx, *username)
	if err != nil {
		return fmt.Errorf("user %s: %w", *username, err)
	}

	bearer, err := jobly.CreateToken(v, user)
	if err != nil {
		return err
	}

	fmt.Println(bearer)

	return nil
}

func typeScript(ctx context.Context, config jobly.AppConfig, args []string) error {
	flags := flag.NewFlagSet("typescript", flag.ExitOnError)
	out := flags.String("out", "jobly.ts", "file to write the TypeScript client to")
	namespace := flags.String("namespace", "Jobly", "TypeScript namespace")
	if err := flags.Parse(args); err != nil {
		return err
	}

	file, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer file.Close()

	models, err := joblymodels.New(nil)
	if err != nil {
		return err
	}

	_, err = jobly.NewApp(ctx, config,
		jobly.WithModels(models),
		jobly.WithTypeScriptOutput(*namespace, file),
	)

	return err
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: jobly <command> [flags]

Commands:
  serve                     Run the HTTP API (default)
  migrate                   Create the tables and indexes
  token -username NAME      Print a bearer token for a user
  typescript -out FILE      Write the TypeScript client

Configuration is read from the environment and .env, see jobly.AppConfig.`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
