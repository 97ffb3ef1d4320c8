package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/request"
	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
)

type CartHandler struct {
	svc      MarketService
	sessions SessionService
}

func NewCartHandler(svc MarketService, sessions SessionService) *CartHandler {
	return &CartHandler{
		svc:      svc,
		sessions: sessions,
	}
}

// HandleGetAccountCart godoc
// @Summary      Get an account's cart
// @Tags         cart
// @Produce      json
// @Param        accountID  path      string  true  "account id"
// @Success      200        {array}   domain.CartItem
// @Failure      400        {object}  response.Err
// @Router       /accounts/{accountID}/cart [get]
func (h *CartHandler) HandleGetAccountCart(ctx *gin.Context) {
	accountID := ctx.Param("accountID")
	if err := request.ValidateAccountID(accountID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("account_id: %w", err)))
		return
	}

	ctx.JSON(http.StatusOK, h.svc.Cart(ctx.Request.Context(), accountID))
}

// HandleGetCart godoc
// @Summary      Get the current user's cart
// @Tags         cart
// @Produce      json
// @Success      200  {array}   domain.CartItem
// @Failure      401  {object}  response.Err
// @Router       /cart [get]
// @Security BearerAuth
func (h *CartHandler) HandleGetCart(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, h.svc.Cart(ctx.Request.Context(), user.AccountID))
}

// HandleAddToCart godoc
// @Summary      Add a token to the cart
// @Description  Adding a token that is already in the cart changes nothing.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request  body      request.CartRequest  true  "request body"
// @Success      200      {object}  domain.TxResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /cart [post]
// @Security BearerAuth
func (h *CartHandler) HandleAddToCart(ctx *gin.Context) {
	caller, respErr := getCallerFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CartRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	res, err := h.svc.AddToCart(ctx.Request.Context(), caller, req.TokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleAddToCart -> h.svc.AddToCart -> %w", err), req.TokenID))
		return
	}

	renderTx(ctx, http.StatusOK, res, res)
}

// HandleRemoveFromCart godoc
// @Summary      Remove a token from the cart
// @Description  Removing a token that is not in the cart changes nothing.
// @Tags         cart
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {object}  domain.TxResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /cart/{tokenID} [delete]
// @Security BearerAuth
func (h *CartHandler) HandleRemoveFromCart(ctx *gin.Context) {
	caller, respErr := getCallerFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	tokenID := ctx.Param("tokenID")
	if err := request.ValidateTokenID(tokenID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("token_id: %w", err)))
		return
	}

	res, err := h.svc.RemoveFromCart(ctx.Request.Context(), caller, tokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleRemoveFromCart -> h.svc.RemoveFromCart -> %w", err), tokenID))
		return
	}

	renderTx(ctx, http.StatusOK, res, res)
}
