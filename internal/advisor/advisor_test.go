package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsmart/internal/core"
)

func sampleSummary() core.Summary {
	return core.Summary{
		User:        "a@b.c",
		Count:       3,
		Income:      decimal.NewFromInt(2000),
		Expense:     decimal.NewFromInt(8000),
		Remaining:   decimal.NewFromInt(-6000),
		PerCategory: []core.CategoryAmount{{Name: "Food", Amount: decimal.NewFromInt(8000)}},
		TopCategory: "Food",
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "k", BaseURL: url, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestAdviseSendsChatRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/chat/completions" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != DefaultModel || req.MaxTokens != DefaultMaxTokens || req.Temperature != DefaultTemperature {
			t.Errorf("unexpected defaults %+v", req)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "3 saran") {
			t.Errorf("unexpected prompt %+v", req.Messages)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" hemat "}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/")
	got, err := c.Advise(context.Background(), sampleSummary())
	if err != nil || got != "hemat" {
		t.Fatalf("unexpected reply %q err=%v", got, err)
	}

	if _, err := c.Advise(context.Background(), sampleSummary()); err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("second call should hit the cache, got %d requests", calls)
	}
}

func TestAdviseRetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	got, err := newTestClient(t, srv.URL).Advise(context.Background(), sampleSummary())
	if err != nil || got != "ok" {
		t.Fatalf("unexpected reply %q err=%v", got, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestAdviseErrorsWrapExternalService(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		attempt int32
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, 1},
		{"server error", http.StatusBadGateway, ``, 3},
		{"empty choices", http.StatusOK, `{"choices":[]}`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Advise(context.Background(), sampleSummary())
			if !errors.Is(err, core.ErrExternalService) {
				t.Fatalf("expected ErrExternalService, got %v", err)
			}
			if calls != tc.attempt {
				t.Fatalf("expected %d attempts, got %d", tc.attempt, calls)
			}
		})
	}
}

func TestAdviseUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Advise(context.Background(), sampleSummary())
	if !errors.Is(err, core.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(sampleSummary())
	for _, want := range []string{"a@b.c", "pemasukan", "pengeluaran", "Sisa budget", "Food", "minggu depan"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	empty := Prompt(core.Summary{User: "x"})
	if strings.Contains(empty, "terbesar") {
		t.Errorf("prompt without expenses must not name a top category")
	}
}
