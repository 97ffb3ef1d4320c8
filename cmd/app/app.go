package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/near-nft/marketplace/internal/api"
	"github.com/near-nft/marketplace/internal/config"
	"github.com/near-nft/marketplace/internal/db"
	"github.com/near-nft/marketplace/internal/logger"
	"github.com/near-nft/marketplace/internal/near"
	"github.com/near-nft/marketplace/internal/repository"
)

const (
	configPath = "./cmd/app/config.yml"

	// Sign-ins the wallet never redirected back from.
	pendingSessionMaxAge = time.Hour
	purgeInterval        = 10 * time.Minute
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}
	if err = conf.API.RequireSecrets(); err != nil {
		return fmt.Errorf("refusing to start -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.API.LogLevel); err != nil {
		return fmt.Errorf("failed to set log level -> %w", err)
	}

	// Only the log level is picked up live; everything else needs a restart.
	config.Watch(configPath, func(c *config.AppConfig) {
		if err := logger.SetLevel(c.API.LogLevel); err != nil {
			zap.L().Warn("ignoring log level from reloaded config", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.Stringer("log_level", logger.Level()))
	}, func(err error) {
		zap.L().Warn("config watch", zap.Error(err))
	})

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rpc := near.NewClient(conf.Near.NodeURL, conf.Near.NetworkID, conf.Near.RequestTimeout)
	contract, err := repository.OpenContract(ctx, conf.Near, rpc)
	if err != nil {
		return fmt.Errorf("failed to open the contract -> %w", err)
	}

	s := api.NewServer(conf, postgresDB, rpc, contract)
	go s.Events.Run(ctx)
	go purgePendingSessions(ctx, s)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr),
		zap.String("network_id", conf.Near.NetworkID),
		zap.String("contract_id", contract.ContractID()),
		zap.Bool("mock_data", contract.IsMock()),
	)
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

func purgePendingSessions(ctx context.Context, s *api.Server) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Auth.PurgePending(ctx, pendingSessionMaxAge)
			if err != nil {
				zap.L().Warn("purging pending sessions failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zap.L().Debug("purged pending sessions", zap.Int64("count", n))
			}
		}
	}
}
