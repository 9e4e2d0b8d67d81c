// Package flags holds the command line flags shared by the binaries.
package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/web3-dashboard-backend/api"
	"github.com/ruteri/web3-dashboard-backend/common"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
		MaxUploadBytes:           cCtx.Int64(MaxUploadBytesFlag.Name),
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"LISTEN_ADDR"},
}

var DatabaseDSNFlag = &cli.StringFlag{
	Name:    "database-dsn",
	Usage:   "PostgreSQL connection string; in-memory storage is used when empty",
	EnvVars: []string{"DATABASE_URL"},
}

var PinningLocationFlag = &cli.StringSliceFlag{
	Name:    "pinning-location",
	Value:   cli.NewStringSlice("ipfs://127.0.0.1:5001"),
	Usage:   "storage backend URI (ipfs://, s3://, file://), may be repeated",
	EnvVars: []string{"PINNING_LOCATIONS"},
}

var PinningTokenFlag = &cli.StringFlag{
	Name:    "pinning-token",
	Usage:   "pinning service credential",
	EnvVars: []string{"PINNING_TOKEN"},
}

var JWTSecretFlag = &cli.StringFlag{
	Name:    "jwt-secret",
	Usage:   "session token signing secret",
	EnvVars: []string{"JWT_SECRET"},
}

var SessionValidityFlag = &cli.DurationFlag{
	Name:  "session-validity",
	Value: 7 * 24 * time.Hour,
	Usage: "lifetime of issued session tokens",
}

var VaultAddrFlag = &cli.StringFlag{
	Name:    "vault-addr",
	Usage:   "Vault address to read missing secrets from",
	EnvVars: []string{"VAULT_ADDR"},
}

var VaultTokenFlag = &cli.StringFlag{
	Name:    "vault-token",
	Usage:   "Vault token",
	EnvVars: []string{"VAULT_TOKEN"},
}

var VaultSecretPathFlag = &cli.StringFlag{
	Name:  "vault-secret-path",
	Value: "secret/web3-dashboard",
	Usage: "KV v2 secret holding jwt_secret and pinning_token, as <mount>/<path>",
}

var AdminAddressesFlag = &cli.StringSliceFlag{
	Name:    "admin-addresses",
	Usage:   "wallet addresses granted admin access at startup",
	EnvVars: []string{"ADMIN_ADDRESSES"},
}

var MaxUploadBytesFlag = &cli.Int64Flag{
	Name:  "max-upload-bytes",
	Value: api.DefaultMaxUploadBytes,
	Usage: "largest accepted upload in bytes",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	DatabaseDSNFlag,
	PinningLocationFlag,
	PinningTokenFlag,
	JWTSecretFlag,
	SessionValidityFlag,
	VaultAddrFlag,
	VaultTokenFlag,
	VaultSecretPathFlag,
	AdminAddressesFlag,
	MaxUploadBytesFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
