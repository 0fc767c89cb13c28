package overlay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pscheid92/wincounter/internal/apiclient"
	"github.com/pscheid92/wincounter/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var correlationIDs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/data/KIRA-1", r.URL.Path)
		correlationIDs = append(correlationIDs, r.Header.Get(correlation.Header))
		_, _ = io.WriteString(w, `{"maxWins":4}`)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(apiclient.New(srv.URL, nil))
	for range 2 {
		state, err := fetcher.Fetch(context.Background(), "KIRA-1")
		require.NoError(t, err)
		maxWins, _ := state.Get("maxWins").Num()
		assert.Equal(t, 4.0, maxWins)
	}

	require.Len(t, correlationIDs, 2)
	assert.NotEmpty(t, correlationIDs[0])
	assert.Equal(t, correlationIDs[0], correlationIDs[1], "one viewer keeps one correlation ID")
}

func TestHTTPFetcher_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(apiclient.New(srv.URL, nil)).Fetch(context.Background(), "KIRA-2")

	var statusErr *apiclient.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "KIRA-2")
}
