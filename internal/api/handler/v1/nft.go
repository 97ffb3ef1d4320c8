package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/near-nft/marketplace/internal/api/handler/v1/request"
	"github.com/near-nft/marketplace/internal/api/handler/v1/response"
	"github.com/near-nft/marketplace/internal/domain"
	"github.com/near-nft/marketplace/internal/service"
)

type MarketService interface {
	IsMock() bool
	ContractID() string
	Mint(ctx context.Context, caller service.Caller, in domain.MintInput) (domain.MintResult, error)
	ListTokens(ctx context.Context, accountID string) []domain.Token
	Token(ctx context.Context, tokenID string) (domain.Token, error)
	Listing(ctx context.Context, tokenID string) (domain.TokenListing, error)
	Price(ctx context.Context, tokenID string) (string, error)
	Buy(ctx context.Context, caller service.Caller, tokenID string) (domain.TxResult, error)
	AddToCart(ctx context.Context, caller service.Caller, tokenID string) (domain.TxResult, error)
	RemoveFromCart(ctx context.Context, caller service.Caller, tokenID string) (domain.TxResult, error)
	Cart(ctx context.Context, accountID string) []domain.CartItem
	Activity(ctx context.Context, accountID string, limit int) ([]domain.Activity, error)
	TokenHistory(ctx context.Context, tokenID string) ([]domain.Activity, error)
}

type NFTHandler struct {
	svc      MarketService
	sessions SessionService
	media    MediaService
}

func NewNFTHandler(svc MarketService, sessions SessionService, media MediaService) *NFTHandler {
	return &NFTHandler{
		svc:      svc,
		sessions: sessions,
		media:    media,
	}
}

// HandleListNFTs godoc
// @Summary      List tokens
// @Description  Lists every token, or the tokens of one account. Failures to reach the contract yield an empty list.
// @Tags         nfts
// @Produce      json
// @Param        owner  query     string  false  "owner account id"
// @Success      200    {array}   domain.Token
// @Failure      400    {object}  response.Err
// @Router       /nfts [get]
func (h *NFTHandler) HandleListNFTs(ctx *gin.Context) {
	owner := ctx.Query("owner")
	if owner != "" {
		if err := request.ValidateAccountID(owner); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("owner: %w", err)))
			return
		}
	}

	ctx.JSON(http.StatusOK, h.svc.ListTokens(ctx.Request.Context(), owner))
}

// HandleMyNFTs godoc
// @Summary      List the current user's tokens
// @Tags         nfts
// @Produce      json
// @Success      200  {array}   domain.Token
// @Failure      401  {object}  response.Err
// @Router       /me/nfts [get]
// @Security BearerAuth
func (h *NFTHandler) HandleMyNFTs(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, h.svc.ListTokens(ctx.Request.Context(), user.AccountID))
}

// HandleGetNFT godoc
// @Summary      Get a token
// @Tags         nfts
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {object}  domain.Token
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /nfts/{tokenID} [get]
func (h *NFTHandler) HandleGetNFT(ctx *gin.Context) {
	tokenID := ctx.Param("tokenID")
	if err := request.ValidateTokenID(tokenID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("token_id: %w", err)))
		return
	}

	token, err := h.svc.Token(ctx.Request.Context(), tokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleGetNFT -> h.svc.Token -> %w", err), tokenID))
		return
	}

	ctx.JSON(http.StatusOK, token)
}

// HandleGetListing godoc
// @Summary      Get a token's listing
// @Description  Owner, title and price of a token. Tokens without a title are listed as "Untitled".
// @Tags         nfts
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {object}  domain.TokenListing
// @Failure      404      {object}  response.Err
// @Router       /nfts/{tokenID}/listing [get]
func (h *NFTHandler) HandleGetListing(ctx *gin.Context) {
	tokenID := ctx.Param("tokenID")
	if err := request.ValidateTokenID(tokenID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("token_id: %w", err)))
		return
	}

	listing, err := h.svc.Listing(ctx.Request.Context(), tokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleGetListing -> h.svc.Listing -> %w", err), tokenID))
		return
	}

	ctx.JSON(http.StatusOK, listing)
}

// HandleGetPrice godoc
// @Summary      Get a token's price
// @Tags         nfts
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {object}  response.PriceResponse
// @Failure      404      {object}  response.Err
// @Router       /nfts/{tokenID}/price [get]
func (h *NFTHandler) HandleGetPrice(ctx *gin.Context) {
	tokenID := ctx.Param("tokenID")
	if err := request.ValidateTokenID(tokenID); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("token_id: %w", err)))
		return
	}

	price, err := h.svc.Price(ctx.Request.Context(), tokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleGetPrice -> h.svc.Price -> %w", err), tokenID))
		return
	}

	ctx.JSON(http.StatusOK, response.PriceResponse{
		TokenID: tokenID,
		Price:   price,
	})
}

// HandleMint godoc
// @Summary      Mint a token
// @Description  Mints a token from a multipart form. The image is pinned to IPFS first unless a media URL is given. Returns 202 with a wallet_url when the wallet has to approve the mint deposit.
// @Tags         nfts
// @Accept       multipart/form-data
// @Produce      json
// @Param        title        formData  string  true   "title"
// @Param        description  formData  string  false  "description"
// @Param        price        formData  string  true   "price in NEAR"
// @Param        image        formData  file    false  "image to pin"
// @Param        media        formData  string  false  "existing media URL"
// @Param        owner_id     formData  string  false  "receiver, defaults to the caller"
// @Param        token_id     formData  string  false  "token id, defaults to token-<millis>"
// @Success      201          {object}  domain.MintResult
// @Success      202          {object}  domain.MintResult
// @Failure      400          {object}  response.Err
// @Failure      401          {object}  response.Err
// @Failure      409          {object}  response.Err
// @Failure      502          {object}  response.Err
// @Router       /nfts [post]
// @Security BearerAuth
func (h *NFTHandler) HandleMint(ctx *gin.Context) {
	caller, respErr := getCallerFromContext(ctx, h.sessions)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.MintRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	image, err := ctx.FormFile("image")
	hasImage := err == nil
	if err = req.Validate(hasImage); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	media := req.Media
	if media == "" {
		if media, respErr = uploadImage(ctx, h.media, image); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
	}

	minted, err := h.svc.Mint(ctx.Request.Context(), caller, domain.MintInput{
		TokenID:     req.TokenID,
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
		Media:       media,
		Price:       req.Price,
	})
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleMint -> h.svc.Mint -> %w", err), req.TokenID))
		return
	}

	renderTx(ctx, http.StatusCreated, minted, minted.TxResult)
}

// HandleBuy godoc
// @Summary      Buy a token
// @Description  Buys a token for its current price. Returns 202 with a wallet_url when the wallet has to approve the payment.
// @Tags         nfts
// @Produce      json
// @Param        tokenID  path      string  true  "token id"
// @Success      200      {object}  domain.TxResult
// @Success      202      {object}  domain.TxResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /nfts/{tokenID}/buy [post]
// @Security BearerAuth
func (h *NFTHandler) HandleBuy(ctx *gin.Context) {
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

	res, err := h.svc.Buy(ctx.Request.Context(), caller, tokenID)
	if err != nil {
		response.RenderErr(ctx, marketErr(fmt.Errorf("v1.HandleBuy -> h.svc.Buy -> %w", err), tokenID))
		return
	}

	renderTx(ctx, http.StatusOK, res, res)
}
