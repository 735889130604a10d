package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dalatbot/config"
)

func TestFetchWithDelaySuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	body := FetchWithDelay(context.Background(), srv.URL, 0)
	if body != "<html>ok</html>" {
		t.Errorf("got %q", body)
	}
	if gotUA != config.UserAgent {
		t.Errorf("user agent = %q, want %q", gotUA, config.UserAgent)
	}
}

func TestFetchWithDelayNeverFails(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()
		if got := FetchWithDelay(context.Background(), srv.URL, 0); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()
		if got := FetchWithDelay(context.Background(), url, 0); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if got := FetchWithDelay(context.Background(), "http://:bad:/x", 0); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})

	t.Run("canceled before delay elapses", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if got := FetchWithDelay(ctx, "http://example.invalid/", time.Hour); got != "" {
			t.Errorf("got %q, want empty", got)
		}
	})
}

func TestFetchWithDelayTruncatesHugeBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxBodyBytes+1024)))
	}))
	defer srv.Close()

	body := FetchWithDelay(context.Background(), srv.URL, 0)
	if len(body) != maxBodyBytes {
		t.Errorf("body length = %d, want %d", len(body), maxBodyBytes)
	}
}
