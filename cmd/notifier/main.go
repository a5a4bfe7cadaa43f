package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-finance-orders/internal/config"
	kafkax "github.com/ariefcatur/go-finance-orders/internal/kafka"
	"github.com/ariefcatur/go-finance-orders/internal/logx"
	"github.com/ariefcatur/go-finance-orders/internal/notify"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/ariefcatur/go-finance-orders/internal/redisx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logx.Setup(cfg.ServiceName+"-notifier", cfg.LogLevel, cfg.LogPretty)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis, dipakai untuk dedup event_id
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	w := &notify.Worker{
		Sender: notify.NewFonnteClient(cfg.FonnteURL, cfg.FonnteToken),
		Redis:  rdb,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.NotifierGroup, orders.TopicOrderNotification, cfg.NotifyWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info().Str("group", cfg.NotifierGroup).Str("topic", orders.TopicOrderNotification).
			Int("workers", cfg.NotifyWorkers).Msg("notifier consumer started")
		if err := cons.Start(ctx, w.HandleMessage); err != nil {
			log.Error().Err(err).Msg("consumer exit")
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
	log.Info().Msg("shutting down consumer...")
	cancel()
	<-done
}
