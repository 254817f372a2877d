package gateway

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{name: "Nil", params: nil, want: ""},
		{name: "Array", params: Params{"fields": []string{"a", "b"}}, want: "fields[]=a&fields[]=b"},
		{name: "Array key already bracketed", params: Params{"fields[]": []string{"a"}}, want: "fields[]=a"},
		{
			name:   "Sorted keys and scalars",
			params: Params{"sortOrder": "desc", "count": 100, "isAssignment": true},
			want:   "count=100&isAssignment=true&sortOrder=desc",
		},
		{name: "Escaped values", params: Params{"q": "a b&c"}, want: "q=a+b%26c"},
		{name: "Dotted field names", params: Params{"fields": []string{"relationships.company"}}, want: "fields[]=relationships.company"},
		{name: "Nil value skipped", params: Params{"a": nil, "b": "x"}, want: "b=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeParams(tt.params))
		})
	}
}

func TestInvokeSendsBearerTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	creds := config.NewMemoryStore(map[string]string{config.KeyService: "secret-key"})
	g := New(srv.URL+"/api/", creds)

	resp, err := g.Invoke(context.Background(), http.MethodGet, "projects", Params{"fields": []string{"a", "b"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"data":[]}`, string(resp.Body))
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "/api/projects", gotPath)
	assert.Equal(t, "fields[]=a&fields[]=b", gotQuery)
	assert.NotEmpty(t, gotRequestID)
}

func TestInvokeLogsRequestIDSentInHeader(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var buf bytes.Buffer
	logger.Setup(&buf)

	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	g := New(srv.URL, config.NewMemoryStore(map[string]string{config.KeyService: "k"}))
	_, err := g.Invoke(context.Background(), http.MethodGet, "projects", nil, nil)
	require.NoError(t, err)

	require.NotEmpty(t, gotRequestID)
	assert.Contains(t, buf.String(), "request_id="+gotRequestID)
}

func TestInvokeMissingCredential(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := New(srv.URL, config.NewMemoryStore(nil))
	_, err := g.Invoke(context.Background(), http.MethodGet, "projects", nil, nil)

	assert.True(t, errors.Is(err, config.ErrMissingCredential))
	assert.False(t, called, "no request may be sent without a key")
}

func TestInvokeErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{name: "Message field", status: http.StatusUnauthorized, body: `{"message":"Unauthenticated."}`, wantStatus: 401, wantMessage: "Unauthenticated."},
		{name: "Nested error message", status: http.StatusBadRequest, body: `{"error":{"message":"bad field"}}`, wantStatus: 400, wantMessage: "bad field"},
		{name: "Status text fallback", status: http.StatusNotFound, body: `not json`, wantStatus: 404, wantMessage: "Not Found"},
		{name: "Error envelope on 200", status: http.StatusOK, body: `{"error":true,"message":"quota exceeded"}`, wantStatus: 200, wantMessage: "quota exceeded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := New(srv.URL, config.NewMemoryStore(map[string]string{config.KeyService: "k"}))
			_, err := g.Invoke(context.Background(), http.MethodGet, "projects", nil, nil)

			var gwErr *Error
			require.True(t, errors.As(err, &gwErr), "expected *gateway.Error, got %v", err)
			assert.Equal(t, tt.wantStatus, gwErr.Status)
			assert.Equal(t, tt.wantMessage, gwErr.Message)
		})
	}
}

func TestInvokeErrorFalseIsNotAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":false,"data":{"id":1}}`))
	}))
	defer srv.Close()

	g := New(srv.URL, config.NewMemoryStore(map[string]string{config.KeyService: "k"}))
	_, err := g.Invoke(context.Background(), http.MethodGet, "projects/1", nil, nil)
	assert.NoError(t, err)
}

func TestInvokeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := New(url, config.NewMemoryStore(map[string]string{config.KeyService: "k"}))
	_, err := g.Invoke(context.Background(), http.MethodGet, "projects", nil, nil)

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 0, gwErr.Status)
	assert.NotEmpty(t, gwErr.Message)
}
