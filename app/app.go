package app

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/davidx1x1/device-loan/db"
	"github.com/davidx1x1/device-loan/email"
	"github.com/davidx1x1/device-loan/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖；所有 handle 都显式注入，不走全局单例
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Mailer *email.Client
	Logger *slog.Logger
	Config Config

	appSess *session.AppSessionStore
}

func (a *App) AppSessions() *session.AppSessionStore { return a.appSess }

func MustNew() *App {
	cfg := LoadConfig()
	logger := newLogger(cfg.LogLevel)

	// --- DB ---
	dbConn, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- SMTP ---
	mailer := email.NewClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	// --- Gin ---
	r := gin.New()
	r.Use(gin.Recovery(), CorrelationID(), RequestLog(logger))
	useCORS(r, cfg.WebOrigin)

	a := &App{
		Router: r, DB: dbConn, RDB: rdb, Mailer: mailer, Logger: logger, Config: cfg,
		appSess: session.NewAppSessionStore(rdb, cfg.SessionTTL),
	}
	return a
}

func (a *App) Close() { _ = a.RDB.Close() }

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
