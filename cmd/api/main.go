package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/offseason/shoe-cleaning-email/internal/config"
	"github.com/offseason/shoe-cleaning-email/internal/email"
	"github.com/offseason/shoe-cleaning-email/internal/httpx"
	kafkax "github.com/offseason/shoe-cleaning-email/internal/kafka"
	"github.com/offseason/shoe-cleaning-email/internal/lifecycle"
	"github.com/offseason/shoe-cleaning-email/internal/orders"
	"github.com/offseason/shoe-cleaning-email/internal/postgres"
	"github.com/offseason/shoe-cleaning-email/internal/redisx"
	"github.com/offseason/shoe-cleaning-email/internal/templates"
	"github.com/offseason/shoe-cleaning-email/internal/tracing"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	for _, w := range cfg.Warnings() {
		slog.Warn("config", "warning", w)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		ExporterURL:    cfg.ExporterURL,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	repo := &orders.Repo{DB: db}

	// Email
	mailer := email.NewDispatcher(cfg.Email.APIKey, cfg.Email.From, cfg.Email.BusinessTo, cfg.Email.BusinessCC)
	if cfg.Email.RatePerSecond > 0 {
		mailer.Limiter = rate.NewLimiter(rate.Limit(cfg.Email.RatePerSecond), 1)
	}

	svc := &lifecycle.Service{
		Orders: repo,
		Mailer: mailer,
		Brand: templates.Brand{
			Name:         cfg.Brand.Name,
			LogoURL:      cfg.Brand.LogoURL,
			SupportEmail: cfg.Brand.SupportEmail,
		},
		Policy: lifecycle.Policy{
			AbortOnPrimaryFailure:   cfg.AbortOnPrimaryFailure,
			AbortOnSecondaryFailure: cfg.AbortOnSecondaryFailure,
		},
		Gap:         cfg.Email.Gap,
		Location:    cfg.Location,
		ServiceName: cfg.ServiceName,
	}
	statusHandler := &httpx.StatusHandler{Orders: repo}

	// Redis (optional)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
		statusHandler.Redis = rdb
	}

	// Kafka producer (optional)
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.LifecycleTopic, 1024)
		prod.Start(ctx)
		svc.Producer = prod
	}

	router := httpx.NewRouter(httpx.RouterConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		CORSOrigins:    cfg.CORSOrigins,
		Timeout:        cfg.RequestTimeout,
	})
	(&httpx.LifecycleHandler{Service: svc, MaxLabelBytes: cfg.MaxLabelBytes}).Register(router)
	statusHandler.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           tracing.WrapHTTPHandler(router, "http-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("Shoe Cleaning Email Service listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush inbox, then close the writer
		prod.WaitClosed()
	}
	cancel()
	shutdownTracing(ctx2)
}
