// Package notify delivers WhatsApp messages to customers through the Fonnte
// gateway, either from an in-process queue or from a Kafka-fed worker.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrMissingToken = errors.New("fonnte token is not set")

// Result mirrors the gateway outcome. OK=false with a nil error means the
// gateway answered but refused the message.
type Result struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Sender interface {
	Send(ctx context.Context, phone, message string) (Result, error)
}

type FonnteClient struct {
	URL   string
	Token string
	HTTP  *http.Client
}

func NewFonnteClient(url, token string) *FonnteClient {
	return &FonnteClient{URL: url, Token: token, HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (c *FonnteClient) Send(ctx context.Context, phone, message string) (Result, error) {
	if c.Token == "" {
		return Result{OK: false, Error: "missing token"}, ErrMissingToken
	}

	form := url.Values{}
	form.Set("target", phone)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, fmt.Errorf("fonnte: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.Token)

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Result{OK: false, Error: "network error"}, fmt.Errorf("fonnte: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var data struct {
			Detail string `json:"detail"`
		}
		_ = json.Unmarshal(body, &data)
		if data.Detail == "" {
			data.Detail = "failed to send"
		}
		return Result{OK: false, Error: data.Detail}, nil
	}
	return Result{OK: true}, nil
}
