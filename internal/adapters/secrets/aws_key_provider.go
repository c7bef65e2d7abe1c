package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/kevin07696/merchant-gateway/internal/domain/ports"
	"github.com/kevin07696/merchant-gateway/pkg/crypto"
)

// SecretsManagerAPI is the part of *secretsmanager.Client the provider uses
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSConfig contains configuration for the AWS Secrets Manager key provider
type AWSConfig struct {
	// AWS Region (e.g., "us-east-1")
	Region string

	// Optional: AWS profile name (for local development)
	Profile string

	// Optional: Custom endpoint (for LocalStack testing)
	Endpoint string
}

// AWSKeyProvider reads sealing keys from AWS Secrets Manager
type AWSKeyProvider struct {
	client SecretsManagerAPI
	logger ports.Logger
}

var _ ports.KeyProvider = (*AWSKeyProvider)(nil)

// NewAWSKeyProvider loads the default AWS credential chain and creates a provider
func NewAWSKeyProvider(ctx context.Context, cfg AWSConfig, logger ports.Logger) (*AWSKeyProvider, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		// Use specific profile (local development)
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOptions := []func(*secretsmanager.Options){}
	if cfg.Endpoint != "" {
		clientOptions = append(clientOptions, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager key provider initialized",
		ports.String("region", cfg.Region),
	)

	return NewAWSKeyProviderWithClient(secretsmanager.NewFromConfig(awsConfig, clientOptions...), logger), nil
}

// NewAWSKeyProviderWithClient creates a provider over an existing client
func NewAWSKeyProviderWithClient(client SecretsManagerAPI, logger ports.Logger) *AWSKeyProvider {
	return &AWSKeyProvider{client: client, logger: logger}
}

// GetKey fetches the secret at path. Binary secrets are used as raw key bytes;
// string secrets must hold the base64 key.
func (p *AWSKeyProvider) GetKey(ctx context.Context, path string) ([]byte, error) {
	p.logger.Info("Retrieving key from AWS Secrets Manager", ports.String("path", path))

	startTime := time.Now()
	result, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		p.logger.Error("Failed to retrieve key",
			ports.String("path", path),
			ports.Err(err),
		)
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	p.logger.Info("Key retrieved successfully",
		ports.String("path", path),
		ports.Duration("elapsed", time.Since(startTime)),
	)

	if len(result.SecretBinary) > 0 {
		if len(result.SecretBinary) != crypto.KeySize {
			return nil, fmt.Errorf("secret %s: key must be %d bytes, got %d", path, crypto.KeySize, len(result.SecretBinary))
		}
		return result.SecretBinary, nil
	}
	return crypto.DecodeKey(aws.ToString(result.SecretString))
}
