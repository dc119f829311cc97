package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/sirupsen/logrus"

	"letrus_backend/internals/bootstrap"
	"letrus_backend/internals/configs"
	database "letrus_backend/internals/databases"
	helper "letrus_backend/internals/helpers"
	"letrus_backend/internals/middlewares"
	"letrus_backend/internals/middlewares/logger"
	routes "letrus_backend/internals/route"
	"letrus_backend/internals/scheduler"
	"letrus_backend/internals/seeds"
)

const usage = `usage: letrus <command> [flags]

commands:
  serve            run the HTTP API and the scheduled jobs (default)
  migrate          create or update the schema
  backfill-plans   generate financial plans for enrollments that have none
  link-payments    link paid historical payments to their plan entries
`

func main() {
	boot := logrus.New()
	configs.LoadEnv(boot)
	cfg := configs.Load()
	log := configs.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = serve(ctx, cfg, log)
	case "migrate":
		err = migrate(ctx, cfg, log)
	case "backfill-plans", "link-payments":
		err = backfill(ctx, cmd, args, cfg, log)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).WithField("command", cmd).Fatal("command failed")
	}
}

func open(ctx context.Context, cfg *configs.Config, log *logrus.Logger) (*bootstrap.Container, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	rdb := configs.ConnectRedis(ctx, cfg.RedisAddr, log)

	closeAll := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := database.Close(db); err != nil {
			log.WithError(err).Warn("closing database")
		}
	}
	return bootstrap.New(cfg, db, rdb, loc, log), closeAll, nil
}

func serve(ctx context.Context, cfg *configs.Config, log *logrus.Logger) error {
	c, closeAll, err := open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ErrorHandler:          helper.ErrorHandler(cfg.IsProduction(), log),
	})

	app.Use(middlewares.RequestID())
	app.Use(middlewares.RecoveryMiddleware(log))
	app.Use(logger.LoggerMiddleware(cfg.BusinessTimezone, log.Out, cfg.IsProduction()))
	app.Use(middlewares.CorsMiddleware(cfg.AllowedOrigins))
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.GlobalRateLimiter())
	app.Use(middlewares.Timeout(cfg.RequestTimeout))

	routes.SetupRoutes(app, c)

	jobs := scheduler.New(c.Loc, log)
	if err := jobs.Add("overdue_sweep", cfg.OverdueSweepCron, c.Sweeper); err != nil {
		return err
	}
	if err := jobs.Add("blacklist_cleanup", cfg.BlacklistCleanupCron, c.BlacklistCleanup); err != nil {
		return err
	}
	jobs.Start()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("server listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := app.ShutdownWithContext(shutdownCtx); serr != nil {
		log.WithError(serr).Warn("http shutdown")
	}
	jobs.Stop(shutdownCtx)
	log.Info("server stopped")
	return err
}

func migrate(ctx context.Context, cfg *configs.Config, log *logrus.Logger) error {
	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return database.Migrate(ctx, db, log)
}

func backfill(ctx context.Context, cmd string, args []string, cfg *configs.Config, log *logrus.Logger) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	batch := fs.Int("batch", 200, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, closeAll, err := open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	switch cmd {
	case "backfill-plans":
		rep, err := seeds.BackfillPlans(ctx, c.Enrollments, c.Intake, *batch, log)
		if err == nil && rep.Failed > 0 {
			err = fmt.Errorf("%d of %d enrollments still without a plan", rep.Failed, rep.Scanned)
		}
		return err
	case "link-payments":
		rep, err := seeds.LinkPayments(ctx, c.Payments, c.Reconciler, c.Materializer, *batch, log)
		if err == nil && rep.Failed > 0 {
			err = fmt.Errorf("%d of %d payments not linked", rep.Failed, rep.Scanned)
		}
		return err
	}
	return errors.New("unknown backfill " + cmd)
}
