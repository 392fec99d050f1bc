package provision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// s3API is the slice of the S3 client this backend uses. *s3.Client
// satisfies it; tests substitute fakes.
type s3API interface {
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
}

// AWSStorageBackend provisions object storage buckets directly against the
// cloud provider.
type AWSStorageBackend struct {
	store    OrderItemStore
	settings SettingsStore

	// newClient builds the S3 client for one attempt. Overridable in tests.
	newClient func(cfg aws.Config) s3API
}

func NewAWSStorageBackend(store OrderItemStore, settings SettingsStore) *AWSStorageBackend {
	return &AWSStorageBackend{
		store:    store,
		settings: settings,
		newClient: func(cfg aws.Config) s3API {
			return s3.NewFromConfig(cfg)
		},
	}
}

// Provision creates a bucket named after the order item's correlation id.
// The product answer set may request public read access.
func (b *AWSStorageBackend) Provision(ctx context.Context, item *models.OrderItem, product *models.Product) error {
	settings, err := b.settings.Get(ctx, SettingsHidAWS)
	if err != nil {
		return fmt.Errorf("load aws settings: %w", err)
	}

	cfg, err := awsConfigFromSettings(ctx, settings)
	if err != nil {
		return err
	}

	answers, err := b.store.GetAnswers(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}
	details := BuildAnswerSet(product.Questions, answers)

	name := resourceName(item)
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if details["Public"] == "true" {
		input.ACL = types.BucketCannedACLPublicRead
	}
	if cfg.Region != awsDefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(cfg.Region),
		}
	}

	if _, err := b.newClient(cfg).CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}

	url := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", name, cfg.Region)
	item.InstanceName = aws.String(name)
	item.RetirementRef = aws.String(name)
	item.URL = aws.String(url)
	item.SetStatus(models.StatusOK)
	return nil
}

// Retire deletes the bucket captured at provision time. No snapshot exists
// for object storage.
func (b *AWSStorageBackend) Retire(ctx context.Context, item *models.OrderItem, product *models.Product) error {
	if item.RetirementRef == nil || *item.RetirementRef == "" {
		return fmt.Errorf("no retirement reference recorded for order item %s", item.ID)
	}

	settings, err := b.settings.Get(ctx, SettingsHidAWS)
	if err != nil {
		return fmt.Errorf("load aws settings: %w", err)
	}

	cfg, err := awsConfigFromSettings(ctx, settings)
	if err != nil {
		return err
	}

	input := &s3.DeleteBucketInput{Bucket: item.RetirementRef}
	if _, err := b.newClient(cfg).DeleteBucket(ctx, input); err != nil {
		return fmt.Errorf("delete bucket: %w", err)
	}

	item.SetStatus(models.StatusRetired)
	return nil
}
