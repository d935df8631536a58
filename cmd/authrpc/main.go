package main

import (
	"log"
	"net"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"github.com/movieon/auth-service/internal/authpb"
	"github.com/movieon/auth-service/internal/authrpc"
	"github.com/movieon/auth-service/internal/config"
	"github.com/movieon/auth-service/internal/database"
	"github.com/movieon/auth-service/internal/repository"
	"github.com/movieon/auth-service/internal/token"
)

// authrpc answers HasAccess checks for the other services. It shares the
// user database, the Redis blocklist and the JWT secret with authserver.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed, token blocklist unavailable")
	}
	defer rdb.Close()

	codec := token.NewCodec(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLHours)*time.Hour)

	srv := authrpc.NewServer(codec, repository.NewUserRepo(db), repository.NewBlocklistRepo(rdb))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.GRPCAddr, err)
	}

	s := grpc.NewServer()
	authpb.RegisterAuthServer(s, srv)

	log.Printf("authorization rpc listening on %s (env=%s)", cfg.GRPCAddr, cfg.Env)
	if err := s.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
