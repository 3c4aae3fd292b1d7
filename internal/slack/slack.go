// Package slack posts rendered digests to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/anurajdeol90/team-digest/internal/apperr"
)

// DefaultMaxChars keeps each post well under Slack's payload limit.
const DefaultMaxChars = 35000

// Options configures a Client. Zero values take defaults.
type Options struct {
	WebhookURL string
	MaxChars   int
	Timeout    time.Duration
	MaxRetries uint64
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client posts text to one webhook.
type Client struct {
	url        string
	maxChars   int
	maxRetries uint64
	http       *http.Client
	log        *slog.Logger

	// newBackOff is swapped in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// New creates a Client. The webhook URL is required.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.WebhookURL) == "" {
		return nil, fmt.Errorf("slack: webhook url is empty: %w", apperr.ErrInvalidConfig)
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = DefaultMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		url:        opts.WebhookURL,
		maxChars:   opts.MaxChars,
		maxRetries: opts.MaxRetries,
		http:       hc,
		log:        log,
		newBackOff: func() backoff.BackOff {
			// BackOff implementations are stateful; always return a fresh instance.
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 500 * time.Millisecond
			bo.MaxElapsedTime = time.Minute
			return bo
		},
	}, nil
}

type payload struct {
	Text string `json:"text"`
}

// StatusError is a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("slack: http %d: %s", e.Code, e.Body)
}

// Post sends text in one or more chunks, in order. Each chunk is retried on
// transport errors, 429 and 5xx. The first chunk that fails stops the post.
func (c *Client) Post(ctx context.Context, text string) error {
	chunks := Chunk(text, c.maxChars)
	for i, chunk := range chunks {
		if err := c.postChunk(ctx, chunk); err != nil {
			return fmt.Errorf("slack: chunk %d/%d: %w: %w", i+1, len(chunks), apperr.ErrSlackPost, err)
		}
		c.log.Debug("slack: chunk posted", slog.Int("chunk", i+1), slog.Int("of", len(chunks)))
	}
	return nil
}

func (c *Client) postChunk(ctx context.Context, text string) error {
	body, err := json.Marshal(payload{Text: text})
	if err != nil {
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.Warn("slack: post failed, retrying", slog.String("error", err.Error()))
			return err
		}
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			c.log.Warn("slack: retryable status", slog.Int("status", resp.StatusCode))
			return serr
		}
		return backoff.Permanent(serr)
	}, bo)
}

// Chunk splits text into pieces of at most limit bytes, breaking on blank
// lines between paragraphs. A paragraph longer than limit is split at the
// last line break that fits, or at a rune boundary.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var buf strings.Builder
	flush := func() {
		if s := strings.TrimRight(buf.String(), "\n"); s != "" {
			parts = append(parts, s)
		}
		buf.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		p := para + "\n\n"
		if buf.Len() > 0 && buf.Len()+len(p) > limit {
			flush()
		}
		for len(p) > limit {
			cut := splitPoint(p, limit)
			buf.WriteString(p[:cut])
			flush()
			p = p[cut:]
		}
		buf.WriteString(p)
	}
	flush()
	return parts
}

func splitPoint(s string, limit int) int {
	if i := strings.LastIndexByte(s[:limit], '\n'); i > 0 {
		return i + 1
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}
