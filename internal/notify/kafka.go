package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-finance-orders/internal/kafka"
	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/ariefcatur/go-finance-orders/internal/redisx"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"
)

type publisher interface {
	TryPublish(key, value []byte, headers ...kafkago.Header) bool
}

// KafkaDispatcher is the orders.Dispatcher used when delivery runs in the
// notifier process. It only enqueues; the notifier does the HTTP call.
type KafkaDispatcher struct {
	Producer publisher
	Service  string
}

func (d *KafkaDispatcher) Dispatch(n orders.Notification) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventNotificationRequested,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.Service,
		CorrelationID: n.OrderID,
		Payload:       kafkax.MustMarshal(orders.NotificationPayload(n)),
	}
	ok := d.Producer.TryPublish(orders.PartitionKey(n.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventNotificationRequested)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if !ok {
		record(ChannelKafka, resultDropped)
		log.Warn().Str("order_id", n.OrderID).Msg("notify: producer inbox full, notification dropped")
		return
	}
	record(ChannelKafka, resultQueued)
}

// Worker consumes notification events in the notifier process.
type Worker struct {
	Sender  Sender
	Redis   *redis.Client // optional, dedup by event id
	Timeout time.Duration
}

// HandleMessage dipasang sebagai handler consumer. Selalu return nil kecuali
// pesan rusak: notifikasi gagal tidak di-retry.
func (w *Worker) HandleMessage(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Error().Err(err).Int64("offset", m.Offset).Msg("notify: bad envelope, skipped")
		return nil
	}
	if env.EventType != orders.EventNotificationRequested {
		return nil
	}

	if w.Redis != nil {
		key := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
		fresh, err := w.Redis.SetNX(ctx, key, "1", redisx.TTLDedup).Result()
		if err == nil && !fresh {
			return nil
		}
	}

	n, err := kafkax.UnwrapPayload[orders.NotificationPayload](env.Payload)
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID).Msg("notify: bad payload, skipped")
		return nil
	}
	if n.Phone == "" {
		return nil
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	deliver(sendCtx, w.Sender, ChannelKafka, n)
	return nil
}
