package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/fmuoria/ezekia-report-agent/internal/config"
	"github.com/fmuoria/ezekia-report-agent/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Params are query parameters. Slice values are sent as repeated key[]=value pairs.
type Params map[string]any

// Response is a successful remote call
type Response struct {
	Status int
	Body   json.RawMessage
}

// Invoker performs authenticated calls against the remote service
type Invoker interface {
	Invoke(ctx context.Context, method, endpoint string, params Params, body any) (Response, error)
}

// Error is a remote or transport failure carrying a user-presentable message
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("ezekia request failed (%d): %s", e.Status, e.Message)
	}
	return "ezekia request failed: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Gateway attaches the stored service key to every request
type Gateway struct {
	baseURL   string
	creds     config.CredentialStore
	transport http.RoundTripper
}

// Option configures a Gateway
type Option func(*Gateway)

// WithTransport replaces the underlying HTTP transport
func WithTransport(rt http.RoundTripper) Option {
	return func(g *Gateway) { g.transport = rt }
}

// New creates a gateway for baseURL reading the key from creds on every call
func New(baseURL string, creds config.CredentialStore, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		creds:     creds,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke sends one request. A missing service key yields config.ErrMissingCredential
// without touching the network.
func (g *Gateway) Invoke(ctx context.Context, method, endpoint string, params Params, body any) (Response, error) {
	key, err := config.Require(g.creds, config.KeyService)
	if err != nil {
		return Response{}, err
	}

	reqURL := g.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if q := EncodeParams(params); q != "" {
		reqURL += "?" + q
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: key}),
			Base:   g.transport,
		},
	}

	slog.InfoContext(ctx, "ezekia request", "method", method, "endpoint", endpoint)

	resp, err := client.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "ezekia request failed", "endpoint", endpoint, "error", err)
		return Response{}, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &Error{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data, resp.StatusCode)
		slog.WarnContext(ctx, "ezekia error response", "endpoint", endpoint, "status", resp.StatusCode, "message", msg)
		return Response{}, &Error{Status: resp.StatusCode, Message: msg}
	}

	if flagged, msg := errorEnvelope(data); flagged {
		slog.WarnContext(ctx, "ezekia error envelope", "endpoint", endpoint, "message", msg)
		return Response{}, &Error{Status: resp.StatusCode, Message: msg}
	}

	slog.DebugContext(ctx, "ezekia response", "endpoint", endpoint, "status", resp.StatusCode, "bytes", len(data))
	return Response{Status: resp.StatusCode, Body: data}, nil
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

// errorMessage picks message, then error.message, then the status text
func errorMessage(data []byte, status int) string {
	var b errorBody
	if json.Unmarshal(data, &b) == nil {
		if b.Message != "" {
			return b.Message
		}
		var nested struct {
			Message string `json:"message"`
		}
		if len(b.Error) > 0 && json.Unmarshal(b.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var plain string
		if len(b.Error) > 0 && json.Unmarshal(b.Error, &plain) == nil && plain != "" {
			return plain
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "failed to fetch data from Ezekia"
}

// errorEnvelope reports a 2xx body of the form {"error": true, "message": ...}
func errorEnvelope(data []byte) (bool, string) {
	var b errorBody
	if json.Unmarshal(data, &b) != nil {
		return false, ""
	}
	var flag bool
	if len(b.Error) == 0 || json.Unmarshal(b.Error, &flag) != nil || !flag {
		return false, ""
	}
	if b.Message == "" {
		return true, "failed to fetch data from Ezekia"
	}
	return true, b.Message
}

// EncodeParams serializes params with sorted keys. Slice values become repeated
// key[]=value pairs; brackets stay literal and values are query-escaped.
func EncodeParams(params Params) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		switch v := params[k].(type) {
		case []string:
			name := escapeKey(arrayKey(k))
			for _, item := range v {
				parts = append(parts, name+"="+url.QueryEscape(item))
			}
		case []int:
			name := escapeKey(arrayKey(k))
			for _, item := range v {
				parts = append(parts, fmt.Sprintf("%s=%d", name, item))
			}
		case []any:
			name := escapeKey(arrayKey(k))
			for _, item := range v {
				parts = append(parts, name+"="+url.QueryEscape(fmt.Sprint(item)))
			}
		case nil:
		default:
			parts = append(parts, escapeKey(k)+"="+url.QueryEscape(fmt.Sprint(v)))
		}
	}
	return strings.Join(parts, "&")
}

func arrayKey(k string) string {
	if strings.HasSuffix(k, "[]") {
		return k
	}
	return k + "[]"
}

func escapeKey(k string) string {
	k = url.QueryEscape(k)
	k = strings.ReplaceAll(k, "%5B", "[")
	return strings.ReplaceAll(k, "%5D", "]")
}
