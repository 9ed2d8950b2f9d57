package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/offseason/shoe-cleaning-email/internal/config"
	"github.com/offseason/shoe-cleaning-email/internal/email"
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
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    cfg.ServiceName + "-worker",
		ServiceVersion: cfg.ServiceVersion,
		ExporterURL:    cfg.ExporterURL,
	})
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	mailer := email.NewDispatcher(cfg.Email.APIKey, cfg.Email.From, cfg.Email.BusinessTo, cfg.Email.BusinessCC)
	if cfg.Email.RatePerSecond > 0 {
		mailer.Limiter = rate.NewLimiter(rate.Limit(cfg.Email.RatePerSecond), 1)
	}

	// lifecycle events go to the same topic as the API's
	prod := kafkax.NewProducer(cfg.KafkaBrokers, cfg.LifecycleTopic, 1024)
	prod.Start(ctx)

	svc := &lifecycle.Service{
		Orders: &orders.Repo{DB: db},
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
		Producer:    prod,
		ServiceName: cfg.ServiceName + "-worker",
	}
	w := &lifecycle.Worker{Service: svc, ServiceName: svc.ServiceName}

	// Redis (dedup + status cache)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Redis = rdb
		w.Redis = rdb
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, cfg.RequestTopic, cfg.WorkerCount)
	go func() {
		log.Printf("lifecycle worker started: group=%s topic=%s workers=%d", cfg.WorkerGroup, cfg.RequestTopic, cfg.WorkerCount)
		if err := cons.Start(ctx, w.HandleLifecycleRequested); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down worker...")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	shutdownTracing(ctx2)
}
