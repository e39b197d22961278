package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/shinyyama/contest-backend/internal/config"
	"github.com/shinyyama/contest-backend/internal/db"
	"github.com/shinyyama/contest-backend/internal/model"
	"github.com/shinyyama/contest-backend/internal/server"
	"github.com/shinyyama/contest-backend/pkg/logger"
)

var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	conn, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	if err := conn.AutoMigrate(model.All()...); err != nil {
		log.Printf("auto migrate error: %v", err)
	}

	srv := server.New(conn, cfg, gitSHA, buildTime)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	logger.Info("starting server on :" + port)
	if err := srv.Start(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
