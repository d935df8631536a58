package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/movieon/auth-service/internal/config"
	"github.com/movieon/auth-service/internal/database"
	"github.com/movieon/auth-service/internal/handler"
	"github.com/movieon/auth-service/internal/middleware"
	"github.com/movieon/auth-service/internal/queue"
	"github.com/movieon/auth-service/internal/repository"
	"github.com/movieon/auth-service/internal/router"
	"github.com/movieon/auth-service/internal/service"
	"github.com/movieon/auth-service/internal/session"
	"github.com/movieon/auth-service/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Without the blocklist, revocation stops working. Refuse to start.
		log.Fatal("redis: connection failed, token blocklist unavailable")
	}
	defer rdb.Close()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	history := repository.NewHistoryRepo(db)
	blocklist := repository.NewBlocklistRepo(rdb)

	codec := token.NewCodec(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour)

	var events session.EventPublisher
	if url := queue.BrokerURL(); url != "" {
		events = service.LoginEventPublisher{URL: url}
		go func() {
			if err := queue.StartAuditConsumer(); err != nil {
				log.Printf("[queue] audit consumer stopped: %v", err)
			}
		}()
	}

	sessions := session.NewManager(users, history, blocklist, codec, events)
	gate := middleware.NewGate(codec, blocklist)

	e := echo.New()
	e.HideBanner = true

	router.Register(e, gate,
		handler.NewAuthHandler(cfg, users, sessions),
		handler.NewProfileHandler(users, history, sessions),
		handler.NewAdminHandler(users, roles, history))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
