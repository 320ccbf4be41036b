package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/pkg/httpclient"
)

func TestGet_DecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`{"id": 7}`))
	}))
	defer srv.Close()

	resp, err := httpclient.Get(srv.URL).Send(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.OK())

	var body struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, 7, body.ID)
}

func TestPost_MarshalsBodyAndSetsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		assert.JSONEq(t, `{"command":"create","id":1}`, string(buf))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := httpclient.Post(srv.URL).
		Body(map[string]any{"command": "create", "id": 1}).
		Send(context.Background())
	require.NoError(t, err)
}

func TestBearer_SetsAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	_, err := httpclient.Get(srv.URL).Bearer("tok-123").Send(context.Background())
	require.NoError(t, err)
}

func TestSend_ErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Product id already exists"}`))
	}))
	defer srv.Close()

	resp, err := httpclient.Get(srv.URL).Send(context.Background())
	require.NoError(t, err, "a 409 is an answer, not a transport problem")
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, resp.Text(), "already exists")
}

func TestSend_TimeoutIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := httpclient.Get(srv.URL).Timeout(30 * time.Millisecond).Send(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "httpclient:")
}
