package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-finance-orders/internal/auth"
	"github.com/ariefcatur/go-finance-orders/internal/config"
	"github.com/ariefcatur/go-finance-orders/internal/httpx"
	kafkax "github.com/ariefcatur/go-finance-orders/internal/kafka"
	"github.com/ariefcatur/go-finance-orders/internal/logx"
	"github.com/ariefcatur/go-finance-orders/internal/notify"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/ariefcatur/go-finance-orders/internal/postgres"
	"github.com/ariefcatur/go-finance-orders/internal/redisx"
	"github.com/ariefcatur/go-finance-orders/internal/updates"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logx.Setup(cfg.ServiceName, cfg.LogLevel, cfg.LogPretty)
	if err := cfg.ValidateAPI(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
			log.Fatal().Err(err).Msg("migrate")
		}
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Notifikasi: inline queue atau lewat Kafka ke cmd/notifier
	sender := notify.NewFonnteClient(cfg.FonnteURL, cfg.FonnteToken)
	var (
		dispatcher orders.Dispatcher
		queue      *notify.Queue
		prod       *kafkax.Producer
	)
	switch cfg.NotifyMode {
	case config.NotifyKafka:
		prod = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderNotification, cfg.NotifyBuffer)
		prod.Start(ctx)
		dispatcher = &notify.KafkaDispatcher{Producer: prod, Service: cfg.ServiceName}
	default:
		queue = notify.NewQueue(sender, cfg.NotifyWorkers, cfg.NotifyBuffer)
		queue.Start(ctx)
		dispatcher = queue
	}

	// Workflow
	products := &orders.ProductRepo{DB: db}
	wf := &orders.Workflow{
		Store:    &orders.Repo{DB: db},
		Catalog:  products,
		Notifier: dispatcher,
		Tracking: orders.NewTrackingGenerator(cfg.TrackPrefix),
	}

	// Update checker
	poller := &updates.Poller{
		Checker: &updates.Checker{
			Feed:    updates.NewGitHubFeed(cfg.ReleaseAPI, cfg.ReleaseRepo),
			Current: cfg.AppVersion,
			Redis:   rdb,
		},
		Interval: cfg.UpdateInterval,
	}
	go poller.Run(ctx)

	router := httpx.NewRouter()
	(&httpx.API{
		Orders:    &httpx.OrdersHandler{Orders: &httpx.CachedOrders{OrderService: wf, Redis: rdb}, Products: products},
		Notify:    &httpx.NotifyHandler{Sender: sender},
		Updates:   &httpx.UpdatesHandler{Updates: poller},
		JWTSecret: cfg.JWTSecret,
		Admin:     &auth.ProfileRepo{DB: db},
	}).Mount(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	// graceful shutdown
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("notify_mode", cfg.NotifyMode).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	if queue != nil {
		queue.Close() // sisa antrian tetap dikirim
		queue.Wait()
	}
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		prod.WaitClosed() // drain
	}
	cancel()
}
