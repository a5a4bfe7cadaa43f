package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackingGenerator_Shape(t *testing.T) {
	g := NewTrackingGenerator("")
	re := regexp.MustCompile(`^FM-[0-9A-Z]{6}-\d{6}$`)
	for i := 0; i < 200; i++ {
		assert.Regexp(t, re, g.Generate())
	}
}

func TestTrackingGenerator_Deterministic(t *testing.T) {
	seq := []int{0, 10, 35, 1, 2, 3}
	i := 0
	g := &TrackingGenerator{
		Prefix: "TK/",
		Now:    func() time.Time { return time.UnixMilli(1_234_000_042) },
		IntN: func(n int) int {
			v := seq[i%len(seq)]
			i++
			return v
		},
	}
	assert.Equal(t, "TK/0AZ123-000042", g.Generate())
}

func TestTrackingGenerator_ZeroValue(t *testing.T) {
	var g TrackingGenerator
	assert.Regexp(t, `^[0-9A-Z]{6}-\d{6}$`, g.Generate())
}

func TestStatus(t *testing.T) {
	st, err := ParseStatus("")
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, st)

	st, err = ParseStatus("dikirim")
	assert.NoError(t, err)
	assert.Equal(t, StatusDikirim, st)

	_, err = ParseStatus("DIKIRIM")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition(StatusPending, "batal"))
}
