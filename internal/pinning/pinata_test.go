package pinning

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *PinataClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewPinataClient(&config.PinataConfig{
		APIKey:     "key",
		APISecret:  "secret",
		Endpoint:   srv.URL,
		GatewayURL: "https://gateway.pinata.cloud/",
		Timeout:    5 * time.Second,
	})
}

func TestPinFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("pinata_api_key"))
		assert.Equal(t, "secret", r.Header.Get("pinata_secret_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		body, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "png-bytes", string(body))

		var meta pinMetadata
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta))
		assert.Equal(t, "cat.png", meta.Name)
		assert.Equal(t, "nft-image", meta.KeyValues["type"])
		assert.JSONEq(t, `{"cidVersion":0}`, r.FormValue("pinataOptions"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"IpfsHash":"QmHash","PinSize":9,"Timestamp":"2024-01-01T00:00:00Z"}`))
	})

	pin, err := c.PinFile(context.Background(), "cat.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "QmHash", pin.IpfsHash)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmHash", pin.URL)
	assert.Equal(t, int64(9), pin.Size)
}

func TestPinFile_MissingHash(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.PinFile(context.Background(), "cat.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoIpfsHash)
}

func TestPinFile_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"reason":"INVALID_API_KEYS"}}`))
	})

	_, err := c.PinFile(context.Background(), "cat.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPinFile_MissingCredentials(t *testing.T) {
	c := NewPinataClient(&config.PinataConfig{Endpoint: "http://127.0.0.1:1"})

	_, err := c.PinFile(context.Background(), "cat.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
