package secrets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	"github.com/kevin07696/merchant-gateway/pkg/crypto"
)

// LocalKeyProvider reads base64 sealing keys from the local filesystem.
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type LocalKeyProvider struct {
	basePath string
	logger   ports.Logger
}

var _ ports.KeyProvider = (*LocalKeyProvider)(nil)

// NewLocalKeyProvider creates a provider rooted at basePath
func NewLocalKeyProvider(basePath string, logger ports.Logger) *LocalKeyProvider {
	return &LocalKeyProvider{
		basePath: basePath,
		logger:   logger,
	}
}

// GetKey reads and decodes the key stored at path
func (p *LocalKeyProvider) GetKey(ctx context.Context, path string) ([]byte, error) {
	clean := filepath.Clean("/" + path)
	filePath := filepath.Join(p.basePath, clean)

	p.logger.Debug("Reading key from filesystem",
		ports.String("path", path),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read key: %w", err)
	}

	return crypto.DecodeKey(strings.TrimSpace(string(data)))
}

// WriteKey stores a base64 key at path, creating parent directories
func (p *LocalKeyProvider) WriteKey(path string, key []byte) error {
	filePath := filepath.Join(p.basePath, filepath.Clean("/"+path))

	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(crypto.EncodeKey(key)+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write key: %w", err)
	}

	p.logger.Info("Stored key to filesystem", ports.String("path", path))
	return nil
}
