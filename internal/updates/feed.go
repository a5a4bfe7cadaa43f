// Package updates checks a GitHub-style release feed for newer builds of the
// service and keeps the latest answer around for the admin endpoints.
package updates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNoRelease = errors.New("no releases found")

type Asset struct {
	Name               string `json:"name"`
	ContentType        string `json:"content_type"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	HTMLURL     string    `json:"html_url"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []Asset   `json:"assets"`
}

type Feed interface {
	Latest(ctx context.Context) (Release, error)
	All(ctx context.Context) ([]Release, error)
}

// GitHubFeed reads releases from the GitHub REST API (or anything serving
// the same shape under BaseURL).
type GitHubFeed struct {
	BaseURL string
	Repo    string
	HTTP    *http.Client
}

func NewGitHubFeed(baseURL, repo string) *GitHubFeed {
	return &GitHubFeed{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Repo:    repo,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Latest kalau /latest 404 (repo cuma punya pre-release/draft), ambil entry
// pertama dari daftar release.
func (f *GitHubFeed) Latest(ctx context.Context) (Release, error) {
	var r Release
	status, err := f.get(ctx, "/releases/latest", &r)
	if err != nil {
		return Release{}, err
	}
	if status == http.StatusOK {
		return r, nil
	}
	if status != http.StatusNotFound {
		return Release{}, fmt.Errorf("release feed: latest: status %d", status)
	}

	all, err := f.All(ctx)
	if err != nil {
		return Release{}, err
	}
	if len(all) == 0 {
		return Release{}, ErrNoRelease
	}
	return all[0], nil
}

func (f *GitHubFeed) All(ctx context.Context) ([]Release, error) {
	var list []Release
	status, err := f.get(ctx, "/releases", &list)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("release feed: list: status %d", status)
	}
	return list, nil
}

// get decodes the body into out only on 200.
func (f *GitHubFeed) get(ctx context.Context, path string, out any) (int, error) {
	url := fmt.Sprintf("%s/repos/%s%s", f.BaseURL, f.Repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("release feed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	hc := f.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("release feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("release feed: decode: %w", err)
	}
	return resp.StatusCode, nil
}
