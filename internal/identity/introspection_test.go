package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "farmgate/pkg/domain-errors"
)

func TestIntrospectValidToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userInfoPath, r.URL.Path)
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"username": "alice",
			"email": "alice@example.com",
			"groups": [{"name": "admins"}, {"name": "staff"}]
		}`))
	}))
	defer provider.Close()

	client := NewIntrospectionClient(provider.URL, time.Second)
	id, err := client.Introspect(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.True(t, id.IsAdmin())
}

func TestIntrospectRejectedToken(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer provider.Close()

	client := NewIntrospectionClient(provider.URL, time.Second)
	_, err := client.Introspect(context.Background(), "bad-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func TestIntrospectProviderDown(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	provider.Close() // connection refused from here on

	client := NewIntrospectionClient(provider.URL, time.Second)
	_, err := client.Introspect(context.Background(), "any")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated),
		"network failure must yield unauthenticated, not a visitor fallback")
}

func TestIntrospectMalformedResponse(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer provider.Close()

	client := NewIntrospectionClient(provider.URL, time.Second)
	_, err := client.Introspect(context.Background(), "any")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func TestIntrospectEmptyUsername(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"username": "", "groups": []}`))
	}))
	defer provider.Close()

	client := NewIntrospectionClient(provider.URL, time.Second)
	_, err := client.Introspect(context.Background(), "any")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}
