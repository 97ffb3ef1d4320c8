package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/near-nft/marketplace/internal/pinning"
)

type pinnerStub struct {
	name    string
	content string
	err     error
}

func (p *pinnerStub) PinFile(_ context.Context, name string, r io.Reader) (pinning.Pin, error) {
	if p.err != nil {
		return pinning.Pin{}, p.err
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return pinning.Pin{}, err
	}
	p.name, p.content = name, string(b)

	return pinning.Pin{IpfsHash: "QmTest", URL: "https://gateway.pinata.cloud/ipfs/QmTest", Size: int64(len(b))}, nil
}

func TestMediaService_Upload(t *testing.T) {
	pinner := &pinnerStub{}
	svc := NewMediaService(pinner)

	url, err := svc.Upload(context.Background(), "../../etc/cat.png", 4, strings.NewReader("meow"))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/QmTest", url)
	assert.Equal(t, "cat.png", pinner.name)
	assert.Equal(t, "meow", pinner.content)
}

func TestMediaService_UploadErrors(t *testing.T) {
	svc := NewMediaService(&pinnerStub{})
	_, err := svc.Upload(context.Background(), "empty.png", 0, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	svc = NewMediaService(&pinnerStub{err: pinning.ErrMissingCredentials})
	_, err = svc.Upload(context.Background(), "cat.png", 4, strings.NewReader("meow"))
	assert.ErrorIs(t, err, ErrMissingCredentials)

	svc = NewMediaService(&pinnerStub{err: errors.New("pinata down")})
	_, err = svc.Upload(context.Background(), "cat.png", 4, strings.NewReader("meow"))
	assert.EqualError(t, err, "s.pinner.PinFile -> pinata down")
}
