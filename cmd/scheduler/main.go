package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/muezzin/internal/aladhan"
	"github.com/Nixie-Tech-LLC/muezzin/internal/db"
	"github.com/Nixie-Tech-LLC/muezzin/internal/events"
	"github.com/Nixie-Tech-LLC/muezzin/internal/redis"
	"github.com/Nixie-Tech-LLC/muezzin/internal/scheduler"
	"github.com/Nixie-Tech-LLC/muezzin/internal/soundtrack"
)

func main() {
	// .env is optional, real deployments set vars directly
	_ = godotenv.Load()

	env := LoadEnvironment()

	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	if env.MQTTBrokerURL != "" {
		if err := events.Connect(env.MQTTBrokerURL, "muezzin-scheduler"); err != nil {
			// events are best-effort; run without them
			log.Warn().Err(err).Msg("mute events disabled")
		}
	}

	if env.APIToken == "" {
		log.Warn().Msg("API_TOKEN not set, operator API is unauthenticated")
	}

	store := db.NewStore()
	zones := soundtrack.NewClient(env.SYBAPIURL, env.SYBAPIToken)
	provider := aladhan.NewClient(env.AladhanAPIURL)

	sched := scheduler.New(store, provider, zones)
	sched.Start(context.Background())

	r := gin.Default()
	RegisterRoutes(r, env, store, sched, zones)

	srv := &http.Server{
		Addr:    env.ServerAddress,
		Handler: r,
	}
	go func() {
		log.Info().Str("address", env.ServerAddress).Msg("operator API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	events.Disconnect()
	db.Close()
}
