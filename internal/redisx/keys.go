package redisx

import "time"

const (
	// Cache public tracking lookup: track:{tracking_number} -> TrackingView JSON
	KeyTracking = "track:%s"

	// Hasil cek update: updates:latest:{current_version} -> Info JSON
	KeyLatestRelease = "updates:latest:%s"

	// Dedup event processing: dedup:{service}:{id} (id = event_id)
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLTracking      = 30 * time.Second
	TTLLatestRelease = 10 * time.Minute
	TTLDedup         = 48 * time.Hour
)
