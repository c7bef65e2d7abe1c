package secrets

import (
	"context"
	"fmt"

	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	"github.com/kevin07696/merchant-gateway/pkg/crypto"
)

// VaultValueField is the KV field holding the base64 key
const VaultValueField = "value"

// KVReader is the part of *vault.KVv2 the provider uses
type KVReader interface {
	Get(ctx context.Context, secretPath string) (*vault.KVSecret, error)
}

// VaultConfig contains configuration for the Vault key provider
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Token for token authentication
	Token string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV v2 secrets engine mount path (default: "secret")
	MountPath string
}

// VaultKeyProvider reads sealing keys from a Vault KV v2 engine
type VaultKeyProvider struct {
	kv     KVReader
	logger ports.Logger
}

var _ ports.KeyProvider = (*VaultKeyProvider)(nil)

// NewVaultKeyProvider creates a token-authenticated Vault client and provider
func NewVaultKeyProvider(cfg VaultConfig, logger ports.Logger) (*VaultKeyProvider, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("token is required for token auth")
	}
	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	client.SetToken(cfg.Token)

	logger.Info("Vault key provider initialized",
		ports.String("address", cfg.Address),
		ports.String("mount_path", cfg.MountPath),
	)

	return NewVaultKeyProviderWithKV(client.KVv2(cfg.MountPath), logger), nil
}

// NewVaultKeyProviderWithKV creates a provider over an existing KV reader
func NewVaultKeyProviderWithKV(kv KVReader, logger ports.Logger) *VaultKeyProvider {
	return &VaultKeyProvider{kv: kv, logger: logger}
}

// GetKey reads the "value" field of the KV secret at path
func (p *VaultKeyProvider) GetKey(ctx context.Context, path string) ([]byte, error) {
	p.logger.Info("Retrieving key from Vault", ports.String("path", path))

	secret, err := p.kv.Get(ctx, path)
	if err != nil {
		p.logger.Error("Failed to retrieve key",
			ports.String("path", path),
			ports.Err(err),
		)
		return nil, fmt.Errorf("failed to read secret %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	value, ok := secret.Data[VaultValueField].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string %q field", path, VaultValueField)
	}
	return crypto.DecodeKey(value)
}
