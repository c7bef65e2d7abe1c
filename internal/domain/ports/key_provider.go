package ports

import "context"

// KeyProvider returns the raw bytes of an encryption key held by a secret
// store. Path format depends on the backend:
//   - local: file path relative to the provider's base directory
//   - AWS:   secret name or ARN
//   - Vault: KV path below the configured mount
type KeyProvider interface {
	GetKey(ctx context.Context, path string) ([]byte, error)
}
