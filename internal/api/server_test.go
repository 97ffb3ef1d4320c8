package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/api/middleware"
	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository/dao"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conf, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	conf.Gin.Mode = "test"
	conf.API.JWTSigningKey = "test-signing-key"

	contract := dao.NewMemoryContractDAO("nft.testnet")
	contract.Seed(dao.SampleTokens()...)
	rpc := near.NewClient("http://127.0.0.1:0", "testnet", time.Second)

	// Sessions are only touched by the auth routes, which these tests avoid.
	return NewServer(conf, nil, rpc, contract)
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		baseURL string
		want    string
	}{
		{"localhost:8080", "http://localhost:8080"},
		{"localhost:8080/", "http://localhost:8080"},
		{"https://nft.example.com/", "https://nft.example.com"},
		{"http://10.0.0.2:8080", "http://10.0.0.2:8080"},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicURL(tt.baseURL))
		})
	}
}

func TestNewServer_Routes(t *testing.T) {
	s := newTestServer(t)

	routes := map[string]bool{}
	for _, r := range s.Router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /api/v1/status",
		"POST /api/v1/auth/signin",
		"GET /api/v1/auth/callback",
		"GET /api/v1/auth/me",
		"POST /api/v1/auth/signout",
		"GET /api/v1/nfts",
		"POST /api/v1/nfts",
		"GET /api/v1/nfts/:tokenID",
		"GET /api/v1/nfts/:tokenID/listing",
		"GET /api/v1/nfts/:tokenID/price",
		"GET /api/v1/nfts/:tokenID/history",
		"POST /api/v1/nfts/:tokenID/buy",
		"GET /api/v1/me/nfts",
		"GET /api/v1/cart",
		"POST /api/v1/cart",
		"DELETE /api/v1/cart/:tokenID",
		"GET /api/v1/accounts/:accountID/cart",
		"GET /api/v1/tx/callback",
		"POST /api/v1/media",
		"GET /api/v1/activity",
		"GET /api/v1/events",
		"GET /swagger/*any",
	} {
		assert.True(t, routes[want], want)
	}
}

func TestNewServer_ListNFTs(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/nfts", nil)
	s.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(middleware.MockDataHeader))
	assert.Contains(t, rec.Body.String(), "Digital Artwork #1")
}

func TestNewServer_PrivateRoutesNeedToken(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	s.Router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
