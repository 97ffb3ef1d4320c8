package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/service"
)

const maxImageSize = 10 << 20

var (
	errImageRequired = errors.New("image file is required")
	errImageTooLarge = fmt.Errorf("image must be at most %d MB", maxImageSize>>20)
)

type MediaService interface {
	Upload(ctx context.Context, name string, size int64, r io.Reader) (string, error)
}

type MediaHandler struct {
	svc      MediaService
	sessions SessionService
}

func NewMediaHandler(svc MediaService, sessions SessionService) *MediaHandler {
	return &MediaHandler{
		svc:      svc,
		sessions: sessions,
	}
}

// HandleUpload godoc
// @Summary      Pin an image to IPFS
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        image  formData  file  true  "image"
// @Success      201    {object}  response.MediaResponse
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      503    {object}  response.Err
// @Router       /media [post]
// @Security BearerAuth
func (h *MediaHandler) HandleUpload(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.sessions); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	image, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errImageRequired))
		return
	}

	url, respErr := uploadImage(ctx, h.svc, image)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusCreated, response.MediaResponse{URL: url})
}

func uploadImage(ctx *gin.Context, svc MediaService, image *multipart.FileHeader) (string, *response.Err) {
	if image == nil {
		return "", response.ErrBadRequest(errImageRequired)
	}
	if image.Size > maxImageSize {
		return "", response.ErrBadRequest(errImageTooLarge)
	}

	f, err := image.Open()
	if err != nil {
		return "", response.ErrBadRequest(fmt.Errorf("image.Open -> %w", err))
	}
	defer f.Close()

	url, err := svc.Upload(ctx.Request.Context(), image.Filename, image.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile):
			return "", response.ErrBadRequest(service.ErrEmptyFile)
		case errors.Is(err, service.ErrMissingCredentials):
			return "", response.ErrServiceUnavailable(errors.New("image uploads are not configured"))
		}

		return "", response.ErrInternalServerError(fmt.Errorf("uploadImage -> svc.Upload -> %w", err))
	}

	return url, nil
}
