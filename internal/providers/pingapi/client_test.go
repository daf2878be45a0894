package pingapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Ping(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"OK", http.StatusOK, nil},
		{"No Content", http.StatusNoContent, nil},
		{"Not Found", http.StatusNotFound, ErrUnexpectedStatus},
		{"Internal Server Error", http.StatusInternalServerError, ErrUnexpectedStatus},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					w.WriteHeader(http.StatusMethodNotAllowed)
					return
				}
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte(`{"message":"pong"}`))
			}))
			defer server.Close()

			client, err := NewClient(server.URL + "/api/ping")
			require.NoError(t, err)

			err = client.Ping(context.Background())
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr), "error should wrap %v, got %v", tc.wantErr, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClient_Ping_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(url)
	require.NoError(t, err)

	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestClient_Ping_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_WithTimeout_LeavesSharedClientUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	shared := &http.Client{}
	client, err := NewClient(server.URL, WithHTTPClient(shared), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	err = client.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, time.Duration(0), shared.Timeout, "shared client must keep its own timeout")
}

func TestClient_Ping_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = client.Ping(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewClient(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"default", "", defaultPingURL, false},
		{"explicit", "https://example.test/api/ping", "https://example.test/api/ping", false},
		{"bad scheme", "ftp://example.test/ping", "", true},
		{"unparseable", "http://[::1", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := NewClient(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, client.URL())
		})
	}
}
