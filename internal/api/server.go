package api

import (
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/near-nft/marketplace/docs"
	v1 "github.com/near-nft/marketplace/internal/api/handler/v1"
	"github.com/near-nft/marketplace/internal/api/middleware"
	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/pinning"
	"github.com/near-nft/marketplace/internal/repository"
	"github.com/near-nft/marketplace/internal/repository/dao"
	"github.com/near-nft/marketplace/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
	Events *v1.EventHub
	Auth   *service.AuthService
	Market *service.MarketService
}

// NewServer wires the API over the given contract backend; rpc is used for
// balances, for signing session calls and for looking up wallet-signed
// transactions.
func NewServer(conf *config.AppConfig, db *gorm.DB, rpc *near.Client, contract repository.ContractDAO) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.Auth = s.initAuthService(db, rpc, contract.ContractID())
	s.Events = v1.NewEventHub(s.Auth, conf.API.AllowedCORSDomains)
	activities := repository.NewActivityRepository(dao.NewActivityDAO(db))
	s.Market = service.NewMarketService(repository.NewNFTRepository(contract), activities, s.Events, conf.Near)
	txs := service.NewTxService(rpc, activities, s.Events, contract.ContractID())
	media := service.NewMediaService(pinning.NewPinataClient(conf.Pinata))

	s.MountMiddlewares()
	s.MountHandlers(
		v1.NewAuthHandler(conf.API, s.Auth),
		v1.NewNFTHandler(s.Market, s.Auth, media),
		v1.NewCartHandler(s.Market, s.Auth),
		v1.NewActivityHandler(s.Market, s.Auth),
		v1.NewMediaHandler(media, s.Auth),
		v1.NewStatusHandler(conf.Near, s.Market),
		v1.NewTxHandler(txs),
	)

	return s
}

func (s *Server) initAuthService(db *gorm.DB, rpc near.RPC, contractID string) *service.AuthService {
	sessionDAO := dao.NewSessionDAO(db)
	repo := repository.NewSessionRepository(sessionDAO, s.Config.API.SessionSecret)
	wallet := near.NewWalletConnection(s.Config.Near.WalletURL, contractID, s.Config.Near.AppName)

	return service.NewAuthService(repo, rpc, wallet, PublicURL(s.Config.API.BaseURL))
}

// PublicURL turns the configured base URL, which may omit the scheme, into
// the absolute address wallets redirect back to.
func PublicURL(baseURL string) string {
	if strings.HasPrefix(baseURL, "http://") || strings.HasPrefix(baseURL, "https://") {
		return strings.TrimRight(baseURL, "/")
	}

	return "http://" + strings.TrimRight(baseURL, "/")
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.MockData(s.Market.IsMock))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	nftHandler *v1.NFTHandler,
	cartHandler *v1.CartHandler,
	activityHandler *v1.ActivityHandler,
	mediaHandler *v1.MediaHandler,
	statusHandler *v1.StatusHandler,
	txHandler *v1.TxHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.GET("/status", statusHandler.HandleStatus)
		public.POST("/auth/signin", authHandler.HandleSignIn)
		public.GET("/auth/callback", authHandler.HandleCallback)
		public.GET("/nfts", nftHandler.HandleListNFTs)
		public.GET("/nfts/:tokenID", nftHandler.HandleGetNFT)
		public.GET("/nfts/:tokenID/listing", nftHandler.HandleGetListing)
		public.GET("/nfts/:tokenID/price", nftHandler.HandleGetPrice)
		public.GET("/nfts/:tokenID/history", activityHandler.HandleGetTokenHistory)
		public.GET("/accounts/:accountID/cart", cartHandler.HandleGetAccountCart)
		public.GET("/tx/callback", txHandler.HandleTxCallback)
	}

	private := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		private.GET("/auth/me", authHandler.HandleMe)
		private.POST("/auth/signout", authHandler.HandleSignOut)
		private.POST("/nfts", nftHandler.HandleMint)
		private.POST("/nfts/:tokenID/buy", nftHandler.HandleBuy)
		private.GET("/me/nfts", nftHandler.HandleMyNFTs)
		private.GET("/cart", cartHandler.HandleGetCart)
		private.POST("/cart", cartHandler.HandleAddToCart)
		private.DELETE("/cart/:tokenID", cartHandler.HandleRemoveFromCart)
		private.POST("/media", mediaHandler.HandleUpload)
		private.GET("/activity", activityHandler.HandleGetActivity)
		private.GET("/events", s.Events.HandleEvents)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "NEAR NFT marketplace API"
	docs.SwaggerInfo.Description = "Mint, list, buy and collect NFTs held by a NEAR contract."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
