package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-finance-orders/internal/orders"
	"github.com/rs/zerolog/log"
)

// Queue is the in-process orders.Dispatcher: a bounded channel drained by a
// fixed number of workers. Send failures are logged and dropped, never retried.
type Queue struct {
	Sender  Sender
	Timeout time.Duration

	jobs    chan orders.Notification
	workers int
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
}

func NewQueue(sender Sender, workers, buf int) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if buf < 0 {
		buf = 0
	}
	return &Queue{
		Sender:  sender,
		Timeout: 15 * time.Second,
		jobs:    make(chan orders.Notification, buf),
		workers: workers,
	}
}

// Start launches the workers. ctx bounds every send; workers exit once Close
// has been called and the backlog is drained.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for n := range q.jobs {
				q.deliver(ctx, n)
			}
		}()
	}
}

func (q *Queue) Dispatch(n orders.Notification) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		record(ChannelInline, resultDropped)
		log.Warn().Str("order_id", n.OrderID).Msg("notify: queue closed, notification dropped")
		return
	}
	select {
	case q.jobs <- n:
	default:
		record(ChannelInline, resultDropped)
		log.Warn().Str("order_id", n.OrderID).Msg("notify: queue full, notification dropped")
	}
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

func (q *Queue) Wait() { q.wg.Wait() }

func (q *Queue) deliver(ctx context.Context, n orders.Notification) {
	sendCtx, cancel := context.WithTimeout(ctx, q.Timeout)
	defer cancel()
	deliver(sendCtx, q.Sender, ChannelInline, n)
}

// deliver sends one notification and swallows the outcome after logging it.
func deliver(ctx context.Context, s Sender, channel string, n orders.Notification) {
	res, err := s.Send(ctx, n.Phone, n.Message)
	if err != nil || !res.OK {
		record(channel, resultFailed)
		ev := log.Warn().Str("order_id", n.OrderID).Str("phone", n.Phone).Str("channel", channel)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Str("gateway_error", res.Error).Msg("notify: send failed")
		return
	}
	record(channel, resultSent)
	log.Debug().Str("order_id", n.OrderID).Stringer("status", n.Status).Str("channel", channel).Msg("notify: sent")
}
