// Package secrets resolves the service's long-lived secrets: the session
// signing secret and the pinning service credential. Values given directly
// (flags or environment) win; missing ones are read from a HashiCorp Vault
// KV v2 secret when one is configured.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// Keys looked up in the Vault secret.
const (
	JWTSecretKey    = "jwt_secret"
	PinningTokenKey = "pinning_token"
)

var (
	// ErrSecretNotFound is returned when the Vault secret does not exist.
	ErrSecretNotFound = errors.New("secret not found in Vault")

	// ErrMissingSigningSecret is returned when no session signing secret could be resolved.
	ErrMissingSigningSecret = errors.New("session signing secret is not configured")
)

// Secrets holds the resolved secret values.
type Secrets struct {
	JWTSecret    string
	PinningToken string
}

// VaultResolver reads a KV v2 secret from Vault using token authentication.
type VaultResolver struct {
	client    *api.Client
	mountPath string
	dataPath  string
	log       *slog.Logger
}

// NewVaultResolver creates a resolver for secretPath, given as
// "<mount>/<path>" (e.g. "secret/web3-dashboard").
func NewVaultResolver(address, token, secretPath string, log *slog.Logger) (*VaultResolver, error) {
	mountPath, dataPath, ok := strings.Cut(strings.Trim(secretPath, "/"), "/")
	if !ok || mountPath == "" || dataPath == "" {
		return nil, fmt.Errorf("invalid Vault secret path %q, expected <mount>/<path>", secretPath)
	}

	config := api.DefaultConfig()
	config.Address = address
	config.Timeout = 30 * time.Second

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return &VaultResolver{
		client:    client,
		mountPath: mountPath,
		dataPath:  strings.TrimSuffix(dataPath, "/"),
		log:       log,
	}, nil
}

// Read returns the string values stored in the secret.
func (r *VaultResolver) Read(ctx context.Context) (map[string]string, error) {
	start := time.Now()

	// Vault KV v2 path structure
	path := fmt.Sprintf("%s/data/%s", r.mountPath, r.dataPath)

	secret, err := r.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		r.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return nil, fmt.Errorf("failed to read Vault secret: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: %s", ErrSecretNotFound, path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	values := make(map[string]string, len(data))
	for key, value := range data {
		str, ok := value.(string)
		if !ok {
			r.log.Warn("Ignoring non-string Vault value", slog.String("key", key))
			continue
		}
		values[key] = str
	}

	r.log.Info("Read secrets from Vault",
		slog.String("path", path),
		slog.Int("keys", len(values)),
		slog.Duration("duration", time.Since(start)))

	return values, nil
}

// Resolve fills the empty fields of direct from vault. vault may be nil.
// The signing secret is required; the pinning credential is not.
func Resolve(ctx context.Context, direct Secrets, vault *VaultResolver) (Secrets, error) {
	resolved := direct

	if vault != nil && (resolved.JWTSecret == "" || resolved.PinningToken == "") {
		values, err := vault.Read(ctx)
		if err != nil {
			return Secrets{}, err
		}
		if resolved.JWTSecret == "" {
			resolved.JWTSecret = values[JWTSecretKey]
		}
		if resolved.PinningToken == "" {
			resolved.PinningToken = values[PinningTokenKey]
		}
	}

	if resolved.JWTSecret == "" {
		return Secrets{}, ErrMissingSigningSecret
	}

	return resolved, nil
}
