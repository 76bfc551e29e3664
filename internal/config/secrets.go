// Package config provides configuration management for the prediction engine.
package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const (
	errLoadAWSConfig           = "failed to load AWS config: %w"
	errGetSecretFromAWSSecrets = "failed to get secret from AWS Secrets Manager: %w"
	errParseSecretJSON         = "failed to parse secret JSON: %w"
	errNoSecretDataFound       = "no secret data found in AWS Secrets Manager"
)

// SecretsOverlay represents the structure of secrets stored in AWS Secrets Manager
type SecretsOverlay struct {
	DatabasePassword string `json:"database_password"`
	FeedAPIKey       string `json:"feed_api_key"`
}

// fetchSecretsFromAWS retrieves secrets from AWS Secrets Manager
func fetchSecretsFromAWS(ctx context.Context, region string, secretName string) (*SecretsOverlay, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf(errLoadAWSConfig, err)
	}

	client := secretsmanager.NewFromConfig(awsCfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := client.GetSecretValue(ctx, input)
	if err != nil {
		return nil, fmt.Errorf(errGetSecretFromAWSSecrets, err)
	}

	return parseSecretData(result)
}

func parseSecretData(result *secretsmanager.GetSecretValueOutput) (*SecretsOverlay, error) {
	overlay := &SecretsOverlay{}

	if result.SecretString != nil {
		if err := json.Unmarshal([]byte(*result.SecretString), overlay); err != nil {
			return nil, fmt.Errorf(errParseSecretJSON, err)
		}
		return overlay, nil
	}
	if len(result.SecretBinary) > 0 {
		if err := json.Unmarshal(result.SecretBinary, overlay); err != nil {
			return nil, fmt.Errorf(errParseSecretJSON, err)
		}
		return overlay, nil
	}

	return nil, fmt.Errorf(errNoSecretDataFound)
}

// LoadSecretsFromAWS overlays secret values from AWS Secrets Manager onto the
// configuration. Empty overlay fields leave the file/env values untouched.
func LoadSecretsFromAWS(cfg *Config, region string, secretName string) error {
	overlay, err := fetchSecretsFromAWS(context.Background(), region, secretName)
	if err != nil {
		return err
	}

	if overlay.DatabasePassword != "" {
		cfg.Database.Password = overlay.DatabasePassword
	}
	if overlay.FeedAPIKey != "" {
		cfg.Feed.APIKey = overlay.FeedAPIKey
	}

	return nil
}
