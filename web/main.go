package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lukashondrich/open-workinghours-sub006/aggregate"
	"github.com/lukashondrich/open-workinghours-sub006/config"
	"github.com/lukashondrich/open-workinghours-sub006/privacy"
	"github.com/lukashondrich/open-workinghours-sub006/queue"
	v1 "github.com/lukashondrich/open-workinghours-sub006/remote/v1"
	"github.com/lukashondrich/open-workinghours-sub006/security"
	"github.com/lukashondrich/open-workinghours-sub006/store"
	"github.com/lukashondrich/open-workinghours-sub006/tracker"
	"github.com/lukashondrich/open-workinghours-sub006/web/handlers"
	"github.com/lukashondrich/open-workinghours-sub006/web/middlewares"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(store.Options{Path: cfg.Database.Path, LogLevel: storeLogLevel(cfg.Database.LogLevel)})
	if err != nil {
		log.Fatal(err)
	}

	tr := tracker.New(db, tracker.SystemClock{})
	tr.ExitDelay = time.Duration(cfg.Tracker.ExitDelayMinutes) * time.Minute
	tr.MinSession = time.Duration(cfg.Tracker.MinSessionMinutes) * time.Minute

	engine := aggregate.NewEngine(db)
	noiser := privacy.NewNoiser()

	tokens := &security.TokenSource{
		Identity:     security.DeviceIdentity{DeviceID: "device", UserName: "device"},
		Base64Secret: cfg.Remote.SigningSecret,
		TTLSeconds:   3600,
	}
	client := v1.NewClient(cfg.Remote.URL, tokens)
	q := queue.New(db, client, cfg.Remote.ClientVersion)

	// Never trust a persisted "sending" across restarts.
	if err := q.ResetStale(); err != nil {
		log.Fatal("reset stale submissions:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan tracker.RegionEvent, 64)
	go tr.Run(ctx, events)

	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := q.ProcessAll(queue.DefaultMaxRetries); err != nil {
					log.Printf("queue: %v", err)
				}
			}
		}
	}()

	r := gin.Default()

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.Remote.SigningSecret == "" {
		log.Fatal("remote.signing_secret is required")
	}
	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.Remote.SigningSecret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	protected := r.Group("/api/v1")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/locations", handlers.ListLocationsHandler(db))
		protected.POST("/locations", handlers.CreateLocationHandler(db))

		protected.GET("/shifts", handlers.ListShiftsHandler(db))
		protected.POST("/shifts", handlers.CreateShiftHandler(db))

		protected.GET("/sessions", handlers.ListSessionsHandler(db))

		protected.GET("/tracker/state", handlers.TrackerStateHandler(db, tr))
		protected.POST("/tracker/events", handlers.RegionEventHandler(events))
		protected.POST("/tracker/clock-in", handlers.ClockInHandler(tr))
		protected.POST("/tracker/clock-out", handlers.ClockOutHandler(tr))

		protected.POST("/days/:date/confirm", handlers.ConfirmDayHandler(engine, noiser, q, cfg.Privacy.Epsilon, cfg.Privacy.SensitivityMinutes))

		protected.GET("/submissions", handlers.ListSubmissionsHandler(q))
		protected.POST("/submissions/:id/send", handlers.SendSubmissionHandler(q))
		protected.POST("/submissions/:id/retry", handlers.RetrySubmissionHandler(q))
		protected.DELETE("/submissions/:id", handlers.DeleteSubmissionHandler(q))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}

func storeLogLevel(level string) store.LogLevel {
	switch level {
	case "silent":
		return store.LogLevelSilent
	case "error":
		return store.LogLevelError
	case "info":
		return store.LogLevelInfo
	default:
		return store.LogLevelWarn
	}
}
