package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruteri/web3-dashboard-backend/auth"
	"github.com/ruteri/web3-dashboard-backend/cmd/flags"
	"github.com/ruteri/web3-dashboard-backend/common"
	"github.com/ruteri/web3-dashboard-backend/httpserver"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
	"github.com/ruteri/web3-dashboard-backend/metrics"
	"github.com/ruteri/web3-dashboard-backend/repository"
	"github.com/ruteri/web3-dashboard-backend/secrets"
	"github.com/ruteri/web3-dashboard-backend/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "dashboard-server",
		Usage: "Serve the wallet-authenticated file dashboard API",
		Flags: append(append([]cli.Flag{flags.LogServiceFlagFn("web3-dashboard")}, flags.CommonFlags...), flags.ServerFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			cfg := flags.ConfigureServer(cCtx, logger)

			ctx, cancel := context.WithTimeout(cCtx.Context, 30*time.Second)
			defer cancel()

			resolved, err := resolveSecrets(ctx, cCtx, logger)
			if err != nil {
				logger.Error("Failed to resolve secrets", "err", err)
				return err
			}

			if resolved.PinningToken == "" {
				logger.Warn("Pinning credential not set - uploads to credentialed backends will fail")
			}

			repo, err := openRepository(ctx, cCtx.String(flags.DatabaseDSNFlag.Name), logger)
			if err != nil {
				logger.Error("Failed to open repository", "err", err)
				return err
			}
			defer repo.Close()

			if err := bootstrapAdmins(ctx, repo, cCtx.StringSlice(flags.AdminAddressesFlag.Name), logger); err != nil {
				logger.Error("Failed to promote admins", "err", err)
				return err
			}

			backend, err := openStorage(cCtx.StringSlice(flags.PinningLocationFlag.Name), resolved.PinningToken, logger)
			if err != nil {
				logger.Error("Failed to configure storage", "err", err)
				return err
			}

			sessions, err := auth.NewSessionIssuer([]byte(resolved.JWTSecret), cCtx.Duration(flags.SessionValidityFlag.Name))
			if err != nil {
				logger.Error("Failed to create session issuer", "err", err)
				return err
			}

			m := metrics.NewMetrics(common.PackageName)
			authService := auth.NewService(repo, sessions, logger)
			handler := httpserver.NewHandler(repo, authService, backend, m, cfg.MaxUploadBytes, logger)
			server := httpserver.New(cfg, handler, m)

			logger.Info("Starting server")
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveSecrets(ctx context.Context, cCtx *cli.Context, logger *slog.Logger) (secrets.Secrets, error) {
	direct := secrets.Secrets{
		JWTSecret:    cCtx.String(flags.JWTSecretFlag.Name),
		PinningToken: cCtx.String(flags.PinningTokenFlag.Name),
	}

	var vault *secrets.VaultResolver
	if addr := cCtx.String(flags.VaultAddrFlag.Name); addr != "" {
		var err error
		vault, err = secrets.NewVaultResolver(addr, cCtx.String(flags.VaultTokenFlag.Name), cCtx.String(flags.VaultSecretPathFlag.Name), logger)
		if err != nil {
			return secrets.Secrets{}, err
		}
	}

	return secrets.Resolve(ctx, direct, vault)
}

func openRepository(ctx context.Context, dsn string, logger *slog.Logger) (interfaces.Repository, error) {
	if dsn == "" {
		logger.Warn("No database configured, using in-memory storage")
		return repository.NewMemory(), nil
	}

	logger.Info("Connecting to PostgreSQL")
	return repository.NewPostgres(ctx, dsn)
}

func bootstrapAdmins(ctx context.Context, repo interfaces.UserRepository, addresses []string, logger *slog.Logger) error {
	for _, raw := range addresses {
		addr, err := interfaces.NewWalletAddressFromHex(raw)
		if err != nil {
			return fmt.Errorf("admin address %q: %w", raw, err)
		}

		user, err := repo.EnsureAdmin(ctx, addr)
		if err != nil {
			return err
		}
		logger.Info("Admin access granted", "walletAddress", addr.String(), "userID", user.ID)
	}
	return nil
}

func openStorage(uris []string, credential string, logger *slog.Logger) (interfaces.StorageBackend, error) {
	locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
	for _, uri := range uris {
		location, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	backend, err := storage.NewStorageBackendFactory(logger, credential).CreateMultiBackend(locations)
	if err != nil {
		return nil, err
	}

	logger.Info("Storage configured", "backend", backend.Name(), "location", backend.LocationURI())
	return backend, nil
}
