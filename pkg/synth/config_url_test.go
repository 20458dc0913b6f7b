package synth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromURL(t *testing.T) {
	t.Parallel()

	const table = `
messaging_order: destination-first
scenarios:
  - name: consume topic
    messaging:
      operation: process
      destination_name: MyTopic
`

	t.Run("fetches over HTTP", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(table))
		}))
		defer srv.Close()

		cfg, err := LoadConfig(srv.URL + "/scenarios.yaml")
		require.NoError(t, err)
		assert.Equal(t, "destination-first", cfg.MessagingOrder)
		require.Len(t, cfg.Scenarios, 1)
		assert.Equal(t, "consume topic", cfg.Scenarios[0].Name)
	})

	t.Run("non-2xx status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusGone)
		}))
		defer srv.Close()

		_, err := LoadConfig(srv.URL + "/scenarios.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 410")
	})

	t.Run("oversized body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("#", maxConfigBytes+1)))
		}))
		defer srv.Close()

		_, err := LoadConfig(srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds 10 MB limit")
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfig("http://127.0.0.1:1/scenarios.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetching URL")
	})
}
