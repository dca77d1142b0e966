package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/gin-gonic/gin"
	"rollcall-attendance-go/attendance"
	"rollcall-attendance-go/config"
	"rollcall-attendance-go/db"
	"rollcall-attendance-go/gui"
	"rollcall-attendance-go/handlers"
	"rollcall-attendance-go/logger"
)

const AppID = "io.github.rollcall.attendance"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	opts := attendance.Options{
		DateLayout:   cfg.Attendance.DateLayout,
		PresentLabel: cfg.Attendance.PresentLabel,
		AbsentLabel:  cfg.Attendance.AbsentLabel,
		TrackTotal:   cfg.Attendance.TrackTotal,
		Logger:       appLog,
	}

	// Redis is optional; without it unsaved marks die with the process
	var redisService *db.RedisService
	if cfg.Redis.Addr != "" {
		client, err := db.InitializeRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLog.Warning("main", "redis unavailable, continuing without recovery", map[string]interface{}{"error": err.Error()})
		} else {
			defer client.Close()
			redisService = db.NewRedisService(client, cfg.Redis.TTL, appLog)
			opts.Store = redisService
			appLog.Info("main", "connected to redis", map[string]interface{}{"addr": cfg.Redis.Addr, "db": cfg.Redis.DB})
		}
	}

	session := attendance.NewSession(opts)

	fyneApp := app.NewWithID(AppID)
	window := gui.New(fyneApp, session, cfg.Window, appLog)

	if redisService != nil {
		if err := window.Restore(ctx, redisService); err != nil {
			appLog.Error("main", err, nil)
		}
	}

	if cfg.API.Addr != "" {
		srv := startAPI(cfg.API.Addr, session, appLog)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				appLog.Error("main", err, nil)
			}
		}()
	}

	window.Run()
}

// startAPI serves the local JSON API in the background
func startAPI(addr string, session *attendance.Session, appLog logger.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	apiHandler := handlers.NewAPIHandler(session, appLog)
	srv := &http.Server{
		Addr:    addr,
		Handler: handlers.NewRouter(apiHandler),
	}

	go func() {
		appLog.Info("main", "starting local api", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("main", err, map[string]interface{}{"addr": addr})
		}
	}()
	return srv
}
