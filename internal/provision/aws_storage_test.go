package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

type fakeS3 struct {
	createInput *s3.CreateBucketInput
	createErr   error

	deleteInput *s3.DeleteBucketInput
	deleteErr   error
}

func (f *fakeS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createInput = params
	return &s3.CreateBucketOutput{}, f.createErr
}

func (f *fakeS3) DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.deleteInput = params
	return &s3.DeleteBucketOutput{}, f.deleteErr
}

func newStorageFixture(item *models.OrderItem, s3Client *fakeS3, settings *fakeSettings, answers []models.Answer) (*Provisioner, *fakeStore) {
	store := newFakeStore(item)
	store.answers[item.ID] = answers

	product := newTestProduct(models.BackendAWSStorage)
	product.Questions = []models.Question{
		{ID: "q1", Key: "Public", Default: "false"},
	}
	products := &fakeProducts{products: map[string]*models.Product{"product-1": product}}

	backend := NewAWSStorageBackend(store, settings)
	backend.newClient = func(cfg aws.Config) s3API { return s3Client }

	registry := NewRegistry()
	registry.Register(models.BackendAWSStorage, backend)

	return NewProvisioner(store, products, registry, nil, nil), store
}

func TestAWSStorageProvisionPublicBucket(t *testing.T) {
	s3Client := &fakeS3{}
	answers := []models.Answer{{OrderItemID: "item-1", QuestionID: "q1", Value: "true"}}
	p, store := newStorageFixture(newTestItem("item-1"), s3Client, awsTestSettings(), answers)

	if err := p.Provision(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := s3Client.createInput
	if in == nil {
		t.Fatal("CreateBucket was not called")
	}
	if got := aws.ToString(in.Bucket); got != "id-0f2c9a4e-8" {
		t.Errorf("bucket name = %q", got)
	}
	if in.ACL != s3types.BucketCannedACLPublicRead {
		t.Errorf("ACL = %q, want public-read", in.ACL)
	}
	if in.CreateBucketConfiguration == nil {
		t.Fatal("missing location constraint for non-default region")
	}
	if got := in.CreateBucketConfiguration.LocationConstraint; got != s3types.BucketLocationConstraint("us-west-2") {
		t.Errorf("location constraint = %q", got)
	}

	item := store.items["item-1"]
	if item.Status != models.StatusOK {
		t.Errorf("status = %q, want ok", item.Status)
	}
	if item.URL == nil || *item.URL != "https://id-0f2c9a4e-8.s3.us-west-2.amazonaws.com" {
		t.Errorf("url = %v", item.URL)
	}
	if item.RetirementRef == nil || *item.RetirementRef != "id-0f2c9a4e-8" {
		t.Errorf("retirement ref = %v", item.RetirementRef)
	}
}

func TestAWSStorageProvisionPrivateDefaultRegion(t *testing.T) {
	s3Client := &fakeS3{}
	settings := &fakeSettings{data: map[string]map[string]string{
		SettingsHidAWS: {"access_key": "AKIATEST", "secret_key": "test-secret"},
	}}
	p, _ := newStorageFixture(newTestItem("item-1"), s3Client, settings, nil)

	if err := p.Provision(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := s3Client.createInput
	if in.ACL != "" {
		t.Errorf("ACL = %q, want unset for private bucket", in.ACL)
	}
	if in.CreateBucketConfiguration != nil {
		t.Error("location constraint set for the default region")
	}
}

func TestAWSStorageProvisionFailure(t *testing.T) {
	s3Client := &fakeS3{createErr: errors.New("BucketAlreadyExists: bucket name taken")}
	p, store := newStorageFixture(newTestItem("item-1"), s3Client, awsTestSettings(), nil)

	if err := p.Provision(context.Background(), "item-1"); err == nil {
		t.Fatal("expected error to propagate")
	}

	item := store.items["item-1"]
	if item.Status != models.StatusCritical {
		t.Errorf("status = %q, want critical", item.Status)
	}
}

func TestAWSStorageRetire(t *testing.T) {
	item := newTestItem("item-1")
	item.RetirementRef = aws.String("id-0f2c9a4e-8")
	s3Client := &fakeS3{}
	p, store := newStorageFixture(item, s3Client, awsTestSettings(), nil)

	if err := p.Retire(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s3Client.deleteInput == nil {
		t.Fatal("DeleteBucket was not called")
	}
	if got := aws.ToString(s3Client.deleteInput.Bucket); got != "id-0f2c9a4e-8" {
		t.Errorf("bucket name = %q", got)
	}
	if got := store.items["item-1"].Status; got != models.StatusRetired {
		t.Errorf("status = %q, want retired", got)
	}
}

func TestAWSStorageRetireIsTerminal(t *testing.T) {
	item := newTestItem("item-1")
	item.RetirementRef = aws.String("id-0f2c9a4e-8")
	s3Client := &fakeS3{}
	p, store := newStorageFixture(item, s3Client, awsTestSettings(), nil)

	if err := p.Retire(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later provision attempt must not pull a retired item back into the
	// active lifecycle.
	if err := p.Provision(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.items["item-1"].Status; got != models.StatusRetired {
		t.Errorf("status = %q, want retired to stay terminal", got)
	}
}
