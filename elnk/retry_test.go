package elnk

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateShortURLWithRetry(t *testing.T) {
	fast := RetryOptions{MaxRetries: 3, RetryDelay: time.Millisecond}

	tests := []struct {
		name      string
		statuses  []int // status of each successive POST, 200 once exhausted
		wantPosts int32
		wantErr   bool
		wantCode  int
	}{
		{
			name:      "first attempt succeeds",
			statuses:  nil,
			wantPosts: 1,
		},
		{
			name:      "server error then success",
			statuses:  []int{http.StatusInternalServerError},
			wantPosts: 2,
		},
		{
			name:      "client error is not retried",
			statuses:  []int{http.StatusBadRequest},
			wantPosts: 1,
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "gives up after max retries",
			statuses:  []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK},
			wantPosts: 3,
			wantErr:   true,
			wantCode:  http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var posts atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					writeJSON(t, w, http.StatusOK, linkDetails("link-123", "abc123", "https://www.example.com"))
					return
				}

				n := int(posts.Add(1))
				if n <= len(tt.statuses) && tt.statuses[n-1] != http.StatusOK {
					message := "Server error"
					if tt.statuses[n-1] < 500 {
						message = "Bad request"
					}
					writeJSON(t, w, tt.statuses[n-1], map[string]any{"message": message})
					return
				}
				writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"id": "link-123"}})
			})

			short, err := client.CreateShortURLWithRetry(context.Background(), "https://www.example.com", "", fast)
			assert.Equal(t, tt.wantPosts, posts.Load())

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, StatusCode(err))
				if tt.wantCode == http.StatusBadRequest {
					assert.Equal(t, "Bad request", ErrorMessage(err))
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "https://elnk.pro/abc123", short.ShortURL)
		})
	}
}

func TestCreateShortURLWithRetryRecordsMetrics(t *testing.T) {
	metrics := newTestMetrics(t)

	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if posts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"id": ""})
	}, WithMetrics(metrics))

	_, err := client.CreateShortURLWithRetry(context.Background(), "https://www.example.com", "", RetryOptions{RetryDelay: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.retriesTotal))
}

func TestCreateShortURLWithRetryUnparseableBody(t *testing.T) {
	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			return
		}
		posts.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("Created"))
	})

	short, err := client.CreateShortURLWithRetry(context.Background(), "https://www.example.com", "", RetryOptions{MaxRetries: 3, RetryDelay: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, int32(1), posts.Load())
	assert.Empty(t, short.ID)
	assert.Equal(t, "https://www.example.com", short.OriginalURL)

	result := NewResult(short, err)
	assert.True(t, result.Success)
}

func TestCreateShortURLWithRetryContextCancelled(t *testing.T) {
	var posts atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for posts.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := client.CreateShortURLWithRetry(ctx, "https://www.example.com", "", RetryOptions{MaxRetries: 5, RetryDelay: time.Minute})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), posts.Load())
}

func TestRetryOptionsDefaults(t *testing.T) {
	opts := RetryOptions{}.withDefaults()
	assert.Equal(t, DefaultMaxRetries, opts.MaxRetries)
	assert.Equal(t, DefaultRetryDelay, opts.RetryDelay)

	opts = RetryOptions{MaxRetries: 5, RetryDelay: 2 * time.Second}.withDefaults()
	assert.Equal(t, 5, opts.MaxRetries)
	assert.Equal(t, 2*time.Second, opts.RetryDelay)
}
