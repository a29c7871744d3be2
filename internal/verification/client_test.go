package verification_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kurochkinivan/member_uploader/internal/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /voters/8001015009087", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"registered": true, "voting_district": "97090012"}`))
	})
	mux.HandleFunc("GET /voters/8501015009084", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /voters/9001015009086", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("GET /voters/7001015009082", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Verify(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := verification.NewClient(srv.URL+"/voters/", time.Second)

	v, err := c.Verify(context.Background(), "8001015009087")
	require.NoError(t, err)
	assert.True(t, v.Registered)
	assert.Equal(t, "97090012", v.VotingDistrict)

	v, err = c.Verify(context.Background(), "8501015009084")
	require.NoError(t, err)
	assert.False(t, v.Registered)

	_, err = c.Verify(context.Background(), "9001015009086")
	assert.ErrorIs(t, err, verification.ErrUnexpectedStatus)
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	c := verification.NewClient(srv.URL+"/voters", 50*time.Millisecond)

	_, err := c.Verify(context.Background(), "7001015009082")
	assert.Error(t, err)
}
