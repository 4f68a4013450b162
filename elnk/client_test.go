package elnk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient starts a server for handler and returns a client pointed at it
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL}, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid config",
			cfg:  Config{APIKey: "test-key"},
		},
		{
			name: "full config",
			cfg: Config{
				APIKey:    "test-key",
				DomainID:  "domain-123",
				ProjectID: "project-456",
				Timeout:   15 * time.Second,
				BaseURL:   "https://example.test/api/",
			},
		},
		{
			name:    "missing API key",
			cfg:     Config{},
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, logger)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, client)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.cfg.APIKey, client.apiKey)
			assert.Equal(t, tt.cfg.DomainID, client.domainID)
			assert.Equal(t, tt.cfg.ProjectID, client.projectID)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultShortBaseURL, client.shortBaseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Equal(t, DefaultConcurrency, client.concurrency)

	client, err = NewClient(Config{APIKey: "test-key", BaseURL: "https://example.test/api/"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/api", client.baseURL)
}

func TestClientOptions(t *testing.T) {
	cfg := Config{APIKey: "test-key"}
	logger := zerolog.Nop()

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient(cfg, logger, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient(cfg, logger, WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Same(t, customClient, client.httpClient)
		assert.Equal(t, 10*time.Second, client.Settings().Timeout)
	})

	t.Run("custom http client without timeout", func(t *testing.T) {
		client, err := NewClient(cfg, logger, WithHTTPClient(&http.Client{}), WithTimeout(7*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 7*time.Second, client.Settings().Timeout)
	})

	t.Run("with concurrency", func(t *testing.T) {
		client, err := NewClient(cfg, logger, WithConcurrency(12))
		require.NoError(t, err)
		assert.Equal(t, 12, client.concurrency)

		client, err = NewClient(cfg, logger, WithConcurrency(0))
		require.NoError(t, err)
		assert.Equal(t, DefaultConcurrency, client.concurrency)
	})

	t.Run("with short base url", func(t *testing.T) {
		client, err := NewClient(cfg, logger, WithShortBaseURL("https://go.example.com/"))
		require.NoError(t, err)
		assert.Equal(t, "https://go.example.com", client.shortBaseURL)
	})
}

func TestClientSettings(t *testing.T) {
	var gotAuth atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": 1, "email": "test@example.com"}})
	})

	t.Run("empty API key is rejected", func(t *testing.T) {
		require.ErrorIs(t, client.SetAPIKey(""), ErrMissingAPIKey)
	})

	t.Run("new API key is sent", func(t *testing.T) {
		require.NoError(t, client.SetAPIKey("rotated-key"))
		_, err := client.GetUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bearer rotated-key", gotAuth.Load())
	})

	t.Run("settings omit the key", func(t *testing.T) {
		client.SetDomainID("domain-123")
		client.SetProjectID("project-456")

		settings := client.Settings()
		assert.Equal(t, "domain-123", settings.DomainID)
		assert.Equal(t, "project-456", settings.ProjectID)
		assert.Equal(t, DefaultTimeout, settings.Timeout)

		encoded, err := json.Marshal(settings)
		require.NoError(t, err)
		assert.NotContains(t, string(encoded), "rotated-key")
	})
}

func TestDoRequestHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "elnk-test", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Empty(t, r.Header.Get("Content-Type"))

		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": "123", "email": "test@example.com"}})
	}, WithUserAgent("elnk-test"))

	user, err := client.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ID("123"), user.ID)
	assert.Equal(t, "test@example.com", user.Email)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			body:        `{"message":"Invalid URL"}`,
			wantMessage: "Invalid URL",
		},
		{
			name:        "errors array",
			status:      http.StatusUnauthorized,
			body:        `{"errors":[{"title":"You do not have access to the API.","status":401}]}`,
			wantMessage: "You do not have access to the API.",
		},
		{
			name:        "empty body",
			status:      http.StatusBadGateway,
			body:        ``,
			wantMessage: "API request failed with status code: 502",
		},
		{
			name:        "non-json body",
			status:      http.StatusInternalServerError,
			body:        `<html>oops</html>`,
			wantMessage: "API request failed with status code: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetLink(context.Background(), "link-123")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)

			res := NewResult[*Link](nil, err)
			assert.False(t, res.Success)
			assert.Equal(t, tt.wantMessage, res.Message)
			assert.Equal(t, tt.status, res.StatusCode)
		})
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: baseURL}, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.CreateShortURL(context.Background(), "https://www.example.com", "")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodPost, transportErr.Method)
	assert.Equal(t, "/links", transportErr.Path)

	res := NewResult[*ShortLink](nil, err)
	assert.False(t, res.Success)
	assert.Equal(t, "No response received from API server", res.Message)
	assert.Zero(t, res.StatusCode)
	assert.True(t, IsRetryable(err))
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL}, zerolog.Nop(), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	_, err = client.GetDomains(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestDecodeData(t *testing.T) {
	t.Run("data member", func(t *testing.T) {
		var link Link
		require.NoError(t, decodeData([]byte(`{"data":{"id":42,"url":"abc"}}`), &link))
		assert.Equal(t, ID("42"), link.ID)
		assert.Equal(t, "abc", link.Alias)
	})

	t.Run("bare object", func(t *testing.T) {
		var link Link
		require.NoError(t, decodeData([]byte(`{"id":"link-1","url":"xyz"}`), &link))
		assert.Equal(t, ID("link-1"), link.ID)
	})

	t.Run("bare array", func(t *testing.T) {
		var links []Link
		require.NoError(t, decodeData([]byte(`[{"id":1},{"id":2}]`), &links))
		assert.Len(t, links, 2)
	})

	t.Run("empty body", func(t *testing.T) {
		var link Link
		require.NoError(t, decodeData([]byte("  "), &link))
	})

	t.Run("malformed", func(t *testing.T) {
		var link Link
		err := decodeData([]byte(`{"data":{"id":[}}`), &link)
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidArgument))
	})
}
