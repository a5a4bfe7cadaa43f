package orders

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultTrackPrefix = "FM-"
	trackAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	trackRandLen       = 6
)

var trackingGenerated = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "tracking_numbers_generated_total",
	Help: "Tracking numbers generated for orders entering dikirim",
})

func init() {
	prometheus.MustRegister(trackingGenerated)
}

// TrackingGenerator builds numbers shaped PREFIX + 6 base-36 chars + "-" +
// last 6 digits of the unix-ms clock. Uniqueness is not checked here; the
// orders table carries a partial unique index so a collision fails the save.
type TrackingGenerator struct {
	Prefix string
	Now    func() time.Time
	IntN   func(n int) int
}

func NewTrackingGenerator(prefix string) *TrackingGenerator {
	if prefix == "" {
		prefix = DefaultTrackPrefix
	}
	return &TrackingGenerator{Prefix: prefix, Now: time.Now, IntN: rand.IntN}
}

func (g *TrackingGenerator) Generate() string {
	now, intn := g.Now, g.IntN
	if now == nil {
		now = time.Now
	}
	if intn == nil {
		intn = rand.IntN
	}

	var b strings.Builder
	b.WriteString(g.Prefix)
	for i := 0; i < trackRandLen; i++ {
		b.WriteByte(trackAlphabet[intn(len(trackAlphabet))])
	}
	fmt.Fprintf(&b, "-%06d", now().UnixMilli()%1_000_000)

	trackingGenerated.Inc()
	return b.String()
}
