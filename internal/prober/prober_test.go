package prober

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(timeout time.Duration) *Prober {
	return New(Config{
		Timeout:         timeout,
		UserAgent:       "SitePulse/1.0 (+https://sitepulse.dev)",
		FollowRedirects: true,
		VerifyTLS:       true,
	})
}

func TestProbe_StatusClasses(t *testing.T) {
	tests := []struct {
		name string
		code int
		up   bool
	}{
		{"200 is up", http.StatusOK, true},
		{"204 is up", http.StatusNoContent, true},
		{"399 is up", 399, true},
		{"400 is down", http.StatusBadRequest, false},
		{"404 is down", http.StatusNotFound, false},
		{"500 is down", http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer s.Close()

			out := newTestProber(2*time.Second).Probe(context.Background(), s.URL)
			assert.Equal(t, tt.up, out.Up)
			assert.Equal(t, tt.code, out.Code)
		})
	}
}

func TestProbe_FollowsRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer s.Close()

	out := newTestProber(2*time.Second).Probe(context.Background(), s.URL)
	assert.True(t, out.Up)
	assert.Equal(t, http.StatusOK, out.Code)
}

func TestProbe_SetsUserAgent(t *testing.T) {
	var ua string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer s.Close()

	newTestProber(2*time.Second).Probe(context.Background(), s.URL)
	assert.Equal(t, "SitePulse/1.0 (+https://sitepulse.dev)", ua)
}

func TestProbe_ConnectionRefusedIsUnreachable(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := s.URL
	s.Close()

	out := newTestProber(time.Second).Probe(context.Background(), url)
	assert.False(t, out.Up)
	assert.Zero(t, out.Code)
}

func TestProbe_TimeoutIsUnreachable(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer s.Close()

	start := time.Now()
	out := newTestProber(50*time.Millisecond).Probe(context.Background(), s.URL)
	assert.False(t, out.Up)
	assert.Less(t, time.Since(start), 250*time.Millisecond, "probe must respect its timeout bound")
}

func TestProbe_MalformedURLIsUnreachable(t *testing.T) {
	out := newTestProber(time.Second).Probe(context.Background(), "http://[::1]:namedport")
	assert.False(t, out.Up)
}

func TestNormalizeURL(t *testing.T) {
	require.Equal(t, "http://example.com", normalizeURL("example.com"))
	require.Equal(t, "https://example.com", normalizeURL(" https://example.com "))
	require.Equal(t, "", normalizeURL("  "))
}
