package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReturnsNilWhenDisabled(t *testing.T) {
	r := NewProxyResolver(ProxyOptions{Enabled: false})
	desc, err := r.Resolve(context.Background())
	require.NoError(t, err)
	assert.Nil(t, desc)
}

func TestResolveParsesDescriptorAndSendsBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"host":"proxy.example.com","port":22225,"username":"u1","password":"p1"}`))
	}))
	defer srv.Close()

	r := NewProxyResolver(ProxyOptions{Enabled: true, Endpoint: srv.URL, APIKey: "secret-key", Timeout: 2 * time.Second})
	desc, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, "proxy.example.com", desc.Host)
	assert.Equal(t, 22225, desc.Port)
	assert.Equal(t, "u1", desc.Username)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestResolveReturnsErrorOnNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewProxyResolver(ProxyOptions{Enabled: true, Endpoint: srv.URL, Timeout: 2 * time.Second})
	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}

func TestResolveReturnsErrorOnMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	r := NewProxyResolver(ProxyOptions{Enabled: true, Endpoint: srv.URL, Timeout: 2 * time.Second})
	_, err := r.Resolve(context.Background())
	assert.Error(t, err)
}
