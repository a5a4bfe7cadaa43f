package notify

import "github.com/prometheus/client_golang/prometheus"

const (
	ChannelInline = "inline"
	ChannelKafka  = "kafka"

	resultSent    = "sent"
	resultFailed  = "failed"
	resultDropped = "dropped"
	resultQueued  = "queued"
)

var notificationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "WhatsApp notifications by channel and outcome",
	},
	[]string{"channel", "result"},
)

func init() {
	prometheus.MustRegister(notificationsTotal)
}

func record(channel, result string) {
	notificationsTotal.WithLabelValues(channel, result).Inc()
}
