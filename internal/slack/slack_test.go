package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/anurajdeol90/team-digest/internal/apperr"
)

type webhook struct {
	mu       sync.Mutex
	statuses []int
	texts    []string
	calls    int
}

func (w *webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := http.StatusOK
	if w.calls < len(w.statuses) {
		status = w.statuses[w.calls]
	}
	w.calls++
	if status == http.StatusOK {
		var p payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		w.texts = append(w.texts, p.Text)
	}
	rw.WriteHeader(status)
	_, _ = rw.Write([]byte("ok"))
}

func newTestClient(t *testing.T, hook *webhook, maxChars int) *Client {
	t.Helper()
	srv := httptest.NewServer(hook)
	t.Cleanup(srv.Close)
	c, err := New(Options{WebhookURL: srv.URL, MaxChars: maxChars, MaxRetries: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c
}

func TestPost_Success(t *testing.T) {
	hook := &webhook{}
	c := newTestClient(t, hook, 0)
	if err := c.Post(context.Background(), "# Team Digest\n"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(hook.texts) != 1 || hook.texts[0] != "# Team Digest\n" {
		t.Errorf("texts = %q", hook.texts)
	}
}

func TestPost_RetriesServerErrors(t *testing.T) {
	hook := &webhook{statuses: []int{http.StatusInternalServerError, http.StatusTooManyRequests, http.StatusOK}}
	c := newTestClient(t, hook, 0)
	if err := c.Post(context.Background(), "digest"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if hook.calls != 3 {
		t.Errorf("calls = %d, want 3", hook.calls)
	}
}

func TestPost_ClientErrorIsPermanent(t *testing.T) {
	hook := &webhook{statuses: []int{http.StatusBadRequest}}
	c := newTestClient(t, hook, 0)
	err := c.Post(context.Background(), "digest")
	if !errors.Is(err, apperr.ErrSlackPost) {
		t.Fatalf("err = %v, want ErrSlackPost", err)
	}
	var serr *StatusError
	if !errors.As(err, &serr) || serr.Code != http.StatusBadRequest {
		t.Errorf("status error = %v", serr)
	}
	if hook.calls != 1 {
		t.Errorf("calls = %d, want 1", hook.calls)
	}
}

func TestPost_GivesUpAfterMaxRetries(t *testing.T) {
	hook := &webhook{statuses: []int{500, 500, 500, 500, 500, 500}}
	c := newTestClient(t, hook, 0)
	if err := c.Post(context.Background(), "digest"); err == nil {
		t.Fatal("expected error")
	}
	if hook.calls != 4 {
		t.Errorf("calls = %d, want 4 (1 + 3 retries)", hook.calls)
	}
}

func TestPost_Chunks(t *testing.T) {
	hook := &webhook{}
	c := newTestClient(t, hook, 25)
	text := strings.Join([]string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc", "dddddddddd"}, "\n\n")
	if err := c.Post(context.Background(), text); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if len(hook.texts) != 2 {
		t.Fatalf("chunks = %d, want 2: %q", len(hook.texts), hook.texts)
	}
	if strings.Join(hook.texts, "\n\n") != text {
		t.Errorf("chunks do not reassemble: %q", hook.texts)
	}
}

func TestNew_RequiresURL(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, apperr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestChunk_LongParagraph(t *testing.T) {
	text := strings.Repeat("line of text\n", 10) + "\ntail"
	parts := Chunk(text, 40)
	for _, p := range parts {
		if len(p) > 40 {
			t.Errorf("part too long (%d): %q", len(p), p)
		}
	}
	if !strings.HasSuffix(parts[len(parts)-1], "tail") {
		t.Errorf("last = %q", parts[len(parts)-1])
	}
}

func TestChunk_RuneBoundary(t *testing.T) {
	text := strings.Repeat("é", 30) // 60 bytes, no breaks
	for _, p := range Chunk(text, 7) {
		if !strings.HasPrefix(p, "é") || len(p)%2 != 0 {
			t.Errorf("split inside a rune: %q", p)
		}
	}
}

func TestChunk_Short(t *testing.T) {
	if got := Chunk("short", 100); len(got) != 1 || got[0] != "short" {
		t.Errorf("Chunk = %q", got)
	}
}
