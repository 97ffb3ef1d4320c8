package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/request"
	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivityHandler struct {
	svc      MarketService
	sessions SessionService
}

func NewActivityHandler(svc MarketService, sessions SessionService) *ActivityHandler {
	return &ActivityHandler{
		svc:      svc,
		sessions: sessions,
	}
}

// HandleGetActivity godoc
// @Summary      The current user's activity
// @Description  Mints, purchases and cart changes made through this API, newest first.
// @Tags         activity
// @Produce      json
// @Param        limit  query     int  false  "max entries (default 20, max 100)"
// @Success      200    {array}   domain.Activity
// @Failure      400    {object}  response.Err
// @Failure      401    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /activity [get]
// @Security BearerAuth
func (h *ActivityHandler) HandleGetActivity(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil || limit < 1 || limit > maxActivityLimit {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("limit must be between 1 and %d", maxActivityLimit)))
		return
	}

	activities, err := h.svc.Activity(ctx.Request.Context(), user.AccountID, limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetActivity -> h.svc.Activity -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, activities)
}

// HandleGetTokenHistory godoc
// @Summary      A token's history
// @Tags         activity
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {array}   domain.Activity
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /nfts/{tokenID}/history [get]
func (h *ActivityHandler) HandleGetTokenHistory(ctx *gin.Context) {
	tokenID := ctx.Param("tokenID")
	if err := request.ValidateTokenID(tokenID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("token_id: %w", err)))
		return
	}

	activities, err := h.svc.TokenHistory(ctx.Request.Context(), tokenID)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTokenHistory -> h.svc.TokenHistory -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, activities)
}
