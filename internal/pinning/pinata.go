package pinning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/near-nft/marketplace/internal/config"
)

var (
	ErrMissingCredentials = errors.New("pinata api key and secret are required")
	ErrNoIpfsHash         = errors.New("pinata response has no IpfsHash")
)

type pinMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues"`
}

type pinOptions struct {
	CIDVersion int `json:"cidVersion"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

type pinError struct {
	Error any `json:"error"`
}

type Pin struct {
	IpfsHash string `json:"ipfs_hash"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// PinataClient pins files to IPFS through the Pinata pinning API.
type PinataClient struct {
	http       *resty.Client
	gatewayURL string
	hasKeys    bool
}

func NewPinataClient(conf *config.PinataConfig) *PinataClient {
	return &PinataClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(conf.Endpoint, "/")).
			SetTimeout(conf.Timeout).
			SetHeader("pinata_api_key", conf.APIKey).
			SetHeader("pinata_secret_api_key", conf.APISecret),
		gatewayURL: strings.TrimRight(conf.GatewayURL, "/"),
		hasKeys:    conf.APIKey != "" && conf.APISecret != "",
	}
}

// PinFile uploads the content of r under name and returns its gateway URL.
func (c *PinataClient) PinFile(ctx context.Context, name string, r io.Reader) (Pin, error) {
	if !c.hasKeys {
		return Pin{}, ErrMissingCredentials
	}

	metadata, err := json.Marshal(pinMetadata{
		Name:      name,
		KeyValues: map[string]string{"type": "nft-image"},
	})
	if err != nil {
		return Pin{}, fmt.Errorf("json.Marshal -> %w", err)
	}
	options, err := json.Marshal(pinOptions{CIDVersion: 0})
	if err != nil {
		return Pin{}, fmt.Errorf("json.Marshal -> %w", err)
	}

	var out pinResponse
	var failure pinError
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", name, r).
		SetMultipartFormData(map[string]string{
			"pinataMetadata": string(metadata),
			"pinataOptions":  string(options),
		}).
		SetResult(&out).
		SetError(&failure).
		Post("/pinning/pinFileToIPFS")
	if err != nil {
		return Pin{}, fmt.Errorf("c.http.Post -> %w", err)
	}
	if resp.IsError() {
		return Pin{}, fmt.Errorf("pinata: http status %d: %v", resp.StatusCode(), failure.Error)
	}
	if out.IpfsHash == "" {
		return Pin{}, ErrNoIpfsHash
	}

	return Pin{
		IpfsHash: out.IpfsHash,
		URL:      c.GatewayURL(out.IpfsHash),
		Size:     out.PinSize,
	}, nil
}

func (c *PinataClient) GatewayURL(ipfsHash string) string {
	return c.gatewayURL + "/ipfs/" + ipfsHash
}
