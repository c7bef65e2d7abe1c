package secrets

import (
	"context"
	"fmt"

	"github.com/kevin07696/merchant-gateway/internal/config"
	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
)

// NewKeyProvider builds the configured key provider, wrapped in a TTL cache
// when cfg.CacheTTL is positive.
func NewKeyProvider(ctx context.Context, cfg config.KeyProviderConfig, logger ports.Logger) (ports.KeyProvider, error) {
	var provider ports.KeyProvider
	switch cfg.Provider {
	case "local":
		provider = NewLocalKeyProvider(cfg.LocalBasePath, logger)
	case "aws":
		p, err := NewAWSKeyProvider(ctx, AWSConfig{Region: cfg.AWSRegion}, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	case "vault":
		p, err := NewVaultKeyProvider(VaultConfig{
			Address:   cfg.VaultAddress,
			Token:     cfg.VaultToken,
			MountPath: cfg.VaultMount,
		}, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, fmt.Errorf("unsupported key provider: %s", cfg.Provider)
	}

	if cfg.CacheTTL > 0 {
		provider = NewCachedKeyProvider(provider, cfg.CacheTTL, logger)
	}
	return provider, nil
}
