package updates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-finance-orders/internal/redisx"
	"github.com/ariefcatur/go-finance-orders/internal/version"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotNewer        = errors.New("update version is not newer than current version")
	ErrNotDownloadable = errors.New("download url not accessible")
	ErrNoUpdate        = errors.New("no update available")
	ErrVersionMismatch = errors.New("update version mismatch")
)

type Manifest struct {
	Version         string    `json:"version"`
	ReleaseDate     time.Time `json:"release_date"`
	Description     string    `json:"description"`
	DownloadURL     string    `json:"download_url"`
	Checksum        string    `json:"checksum,omitempty"`
	Required        bool      `json:"required"`
	BreakingChanges bool      `json:"breaking_changes"`
}

type Info struct {
	CurrentVersion  string    `json:"current_version"`
	LatestVersion   string    `json:"latest_version"`
	UpdateAvailable bool      `json:"update_available"`
	Manifest        *Manifest `json:"manifest,omitempty"`
	CheckedAt       time.Time `json:"checked_at"`
}

// ManifestFrom maps a release onto the manifest the admin UI consumes.
func ManifestFrom(r Release) Manifest {
	dl := r.HTMLURL
	if len(r.Assets) > 0 {
		dl = r.Assets[0].BrowserDownloadURL
	}
	desc := r.Body
	if desc == "" {
		desc = "Release " + r.TagName
	}
	return Manifest{
		Version:     strings.TrimPrefix(r.TagName, "v"),
		ReleaseDate: r.PublishedAt,
		Description: desc,
		DownloadURL: dl,
	}
}

type Checker struct {
	Feed    Feed
	Current string
	Redis   *redis.Client // optional
	TTL     time.Duration
	HTTP    *http.Client
}

// CheckForUpdates answers from the Redis cache when it holds a result for the
// running version, otherwise it asks the feed.
func (c *Checker) CheckForUpdates(ctx context.Context) Info {
	if info, ok := c.Cached(ctx); ok {
		return info
	}
	return c.Fetch(ctx)
}

// Fetch always queries the feed. It never fails: a feed error reports "no
// update" for the current version and is not cached.
func (c *Checker) Fetch(ctx context.Context) Info {
	info := Info{CurrentVersion: c.Current, LatestVersion: c.Current, CheckedAt: time.Now().UTC()}

	rel, err := c.Feed.Latest(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("updates: check failed")
		return info
	}

	m := ManifestFrom(rel)
	info.LatestVersion = m.Version
	if version.Greater(m.Version, c.Current) {
		info.UpdateAvailable = true
		info.Manifest = &m
	}

	if c.Redis != nil {
		key := fmt.Sprintf(redisx.KeyLatestRelease, c.Current)
		ttl := c.TTL
		if ttl <= 0 {
			ttl = redisx.TTLLatestRelease
		}
		if err := redisx.SetJSON(ctx, c.Redis, key, info, ttl); err != nil {
			log.Debug().Err(err).Msg("updates: cache write failed")
		}
	}
	return info
}

// Cached returns the last stored Info, if any.
func (c *Checker) Cached(ctx context.Context) (Info, bool) {
	if c.Redis == nil {
		return Info{}, false
	}
	var info Info
	ok, err := redisx.GetJSON(ctx, c.Redis, fmt.Sprintf(redisx.KeyLatestRelease, c.Current), &info)
	if err != nil || !ok {
		return Info{}, false
	}
	return info, true
}

func (c *Checker) Releases(ctx context.Context) ([]Release, error) {
	return c.Feed.All(ctx)
}

// Verify checks that m is newer than the running version and that its
// download URL answers a HEAD with 2xx. Nothing is downloaded.
func (c *Checker) Verify(ctx context.Context, m Manifest) error {
	if !version.Greater(m.Version, c.Current) {
		return fmt.Errorf("%w: %s <= %s", ErrNotNewer, m.Version, c.Current)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.DownloadURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDownloadable, err)
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotDownloadable, err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrNotDownloadable, resp.StatusCode)
	}
	log.Info().Str("version", m.Version).Msg("updates: package verified")
	return nil
}
