package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/near-nft/marketplace/internal/pinning"
)

var (
	ErrMissingCredentials = pinning.ErrMissingCredentials
	ErrEmptyFile          = errors.New("file is empty")
)

type Pinner interface {
	PinFile(ctx context.Context, name string, r io.Reader) (pinning.Pin, error)
}

type MediaService struct {
	pinner Pinner
}

func NewMediaService(pinner Pinner) *MediaService {
	return &MediaService{
		pinner: pinner,
	}
}

// Upload pins an image and returns its public gateway URL.
func (s *MediaService) Upload(ctx context.Context, name string, size int64, r io.Reader) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		name = "image"
	}

	pin, err := s.pinner.PinFile(ctx, name, r)
	if err != nil {
		return "", fmt.Errorf("s.pinner.PinFile -> %w", err)
	}

	return pin.URL, nil
}
