package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	glog "github.com/labstack/gommon/log"

	"github.com/iliyamo/philharmonic-console/internal/config"
	"github.com/iliyamo/philharmonic-console/internal/handler"
	"github.com/iliyamo/philharmonic-console/internal/middleware"
	"github.com/iliyamo/philharmonic-console/internal/notify"
	"github.com/iliyamo/philharmonic-console/internal/obs"
	"github.com/iliyamo/philharmonic-console/internal/queue"
	"github.com/iliyamo/philharmonic-console/internal/remote"
	"github.com/iliyamo/philharmonic-console/internal/router"
	"github.com/iliyamo/philharmonic-console/internal/service"
	"github.com/iliyamo/philharmonic-console/internal/shell"
	"github.com/iliyamo/philharmonic-console/internal/views"
)

func main() {
	cfg := config.Load()
	obs.Init()

	e := echo.New()
	e.HideBanner = true
	if cfg.Env == "dev" {
		e.Logger.SetLevel(glog.DEBUG)
	} else {
		e.Logger.SetLevel(glog.INFO)
	}
	e.Use(echomw.Recover())
	e.Use(echo.WrapMiddleware(obs.Instrument))

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting per instance")
	}

	// A nil *Publisher must not end up inside the interface.
	var activity views.Activity
	publisher := service.NewPublisher(cfg.AMQPURL, cfg.ActivityQueue)
	if publisher != nil {
		activity = publisher
		defer publisher.Close()
	}
	if cfg.AMQPURL != "" && cfg.ActivityLog != "" {
		go queue.StartActivityConsumer(cfg.AMQPURL, cfg.ActivityQueue, cfg.ActivityLog)
	}

	sessions := handler.NewSessions(cfg.SessionIdleTTL, func() (*shell.Shell, error) {
		notes := notify.NewQueue(cfg.NotifyTTL)
		client, err := remote.New(cfg.APIBaseURL, notes, cfg.APITimeout)
		if err != nil {
			return nil, err
		}
		return shell.New(client, shell.Options{
			Notes:    notes,
			Logger:   e.Logger,
			PageSize: cfg.PageSize,
			Activity: activity,
		}), nil
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, time.Minute)

	router.RegisterRoutes(e, sessions)
	router.RegisterConsole(e, &handler.Console{Sessions: sessions},
		middleware.SessionID(cfg.SessionCookie, cfg.Env == "prod"),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, api=%s)", addr, cfg.Env, cfg.APIBaseURL)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = e.Shutdown(shutdown)
	if rdb != nil {
		_ = rdb.Close()
	}
}
