package provision

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// SettingsHidAWS is the settings-store key for the cloud provider
// (access_key, secret_key, region).
const SettingsHidAWS = "aws"

const awsDefaultRegion = "us-east-1"

// awsConfigFromSettings builds an SDK config with static credentials for one
// provision/retire call. Nothing is reused across attempts, so credential
// rotation in the settings store takes effect immediately.
func awsConfigFromSettings(ctx context.Context, settings map[string]string) (aws.Config, error) {
	region := settings["region"]
	if region == "" {
		region = awsDefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings["access_key"], settings["secret_key"], ""),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// resourceName derives a readable, roughly unique instance name from the
// order item's correlation id.
func resourceName(item *models.OrderItem) string {
	return "id-" + prefixOf(item.UUID, 10)
}

// snapshotName derives the final-snapshot identifier used when retiring a
// database instance.
func snapshotName(item *models.OrderItem) string {
	return "snapshot-" + prefixOf(item.UUID, 6)
}

func prefixOf(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

// generatePassword returns a short random hex credential for a
// system-generated master user. Only a hash of it is ever persisted.
func generatePassword() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
