package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"lingo-engine/internal/cache"
	"lingo-engine/internal/history"
	"lingo-engine/internal/shared"
	"lingo-engine/internal/translator"
	"lingo-engine/internal/vocab"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/manifold-inc/manifold-sdk/lib/eflag"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Flags / ENV Variables
	vocabPaths := flag.String("vocabs", "", "Comma-separated vocabulary file paths (source first, target last)")
	workers := flag.Int("workers", 1, "Worker thread count, 0 for synchronous mode")
	capacityBytes := flag.Int64("capacity-bytes", 64<<20, "Admission budget in bytes")
	redisAddr := flag.String("redis-addr", "", "Redis host:port for the response cache, empty to disable")
	dsn := flag.String("dsn", "", "MySQL DSN for request history, empty to disable")
	listen := flag.String("listen", ":9090", "Operational listener address (ping, metrics)")
	metricsAPIKey := flag.String("metrics-api-key", "", "Metrics api key")
	debug := flag.Bool("debug", false, "Debug enabled")

	err := eflag.SetFlagsFromEnvironment()
	if err != nil {
		panic(err)
	}
	flag.Parse()

	var logger *zap.Logger
	if !*debug {
		logger, err = zap.NewProduction()
		if err != nil {
			panic("Failed init logger")
		}
	}
	if *debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic("Failed init logger")
		}
	}
	log := logger.Sugar()

	vocabs, err := vocab.LoadSet(strings.Split(*vocabPaths, ","))
	if err != nil {
		panic(fmt.Sprintf("failed loading vocabularies: %s", err))
	}

	// Interface-typed so a disabled cache stays a nil interface.
	var respCache translator.ResponseCache
	if *redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     *redisAddr,
			Password: "",
			DB:       0,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			panic(fmt.Sprintf("failed ping to redis db: %s", err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		respCache = cache.New(redisClient, shared.ResponseCacheTTL, log)
	}

	var recorder *history.Recorder
	if *dsn != "" {
		db, err := sql.Open("mysql", *dsn)
		if err != nil {
			panic(fmt.Sprintf("failed initializing sqlClient: %s", err))
		}
		if err = db.Ping(); err != nil {
			panic(fmt.Sprintf("failed ping to sql db: %s", err))
		}
		defer func() {
			_ = db.Close()
		}()
		recorder = history.NewRecorder(db, log)
	}

	service, err := translator.New(translator.Config{
		Workers:       *workers,
		CapacityBytes: *capacityBytes,
		Vocabs:        vocabs,
		NewEngine:     newPassthroughEngine,
		Cache:         respCache,
		History:       recorder,
		Log:           log,
	})
	if err != nil {
		panic(fmt.Sprintf("failed starting service: %s", err))
	}
	log.Infow("service started", "workers", *workers, "capacity_bytes", *capacityBytes)

	e := echo.New()
	e.GET(("/ping"), func(c echo.Context) error {
		return c.String(200, "")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if *metricsAPIKey == "" {
				return next(c)
			}
			if c.Request().Header.Get("Authorization") != "Bearer "+*metricsAPIKey {
				return c.String(401, "Unauthorized API key")
			}
			return next(c)
		}
	})

	go func() {
		if err := e.Start(*listen); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	service.Stop()
	if recorder != nil {
		recorder.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shared.DefaultShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
