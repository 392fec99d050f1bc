package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"golang.org/x/crypto/bcrypt"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

type fakeRDS struct {
	createInput *rds.CreateDBInstanceInput
	createOut   *rds.CreateDBInstanceOutput
	createErr   error

	deleteInput *rds.DeleteDBInstanceInput
	deleteErr   error
}

func (f *fakeRDS) CreateDBInstance(ctx context.Context, params *rds.CreateDBInstanceInput, optFns ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error) {
	f.createInput = params
	return f.createOut, f.createErr
}

func (f *fakeRDS) DeleteDBInstance(ctx context.Context, params *rds.DeleteDBInstanceInput, optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error) {
	f.deleteInput = params
	return &rds.DeleteDBInstanceOutput{}, f.deleteErr
}

func awsTestSettings() *fakeSettings {
	return &fakeSettings{data: map[string]map[string]string{
		SettingsHidAWS: {
			"access_key": "AKIATEST",
			"secret_key": "test-secret",
			"region":     "us-west-2",
		},
	}}
}

func newDatabaseFixture(item *models.OrderItem, rdsClient *fakeRDS) (*Provisioner, *fakeStore) {
	store := newFakeStore(item)

	product := newTestProduct(models.BackendAWSDatabase)
	product.Questions = []models.Question{
		{ID: "q1", Key: "Engine", Default: "mysql"},
		{ID: "q2", Key: "AllocatedStorage", Default: "20"},
	}
	products := &fakeProducts{products: map[string]*models.Product{"product-1": product}}

	backend := NewAWSDatabaseBackend(store, awsTestSettings())
	backend.newClient = func(cfg aws.Config) rdsAPI { return rdsClient }

	registry := NewRegistry()
	registry.Register(models.BackendAWSDatabase, backend)

	return NewProvisioner(store, products, registry, nil, nil), store
}

func TestAWSDatabaseProvision(t *testing.T) {
	rdsClient := &fakeRDS{
		createOut: &rds.CreateDBInstanceOutput{
			DBInstance: &rdstypes.DBInstance{
				Endpoint: &rdstypes.Endpoint{
					Address: aws.String("id-0f2c9a4e-8.abcdef.us-west-2.rds.amazonaws.com"),
					Port:    aws.Int32(3306),
				},
			},
		},
	}
	p, store := newDatabaseFixture(newTestItem("item-1"), rdsClient)

	if err := p.Provision(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := rdsClient.createInput
	if in == nil {
		t.Fatal("CreateDBInstance was not called")
	}
	if got := aws.ToString(in.DBInstanceIdentifier); got != "id-0f2c9a4e-8" {
		t.Errorf("instance identifier = %q", got)
	}
	if got := aws.ToString(in.MasterUsername); got != "admin" {
		t.Errorf("master username = %q", got)
	}
	if got := aws.ToString(in.Engine); got != "mysql" {
		t.Errorf("engine = %q", got)
	}
	if got := aws.ToInt32(in.AllocatedStorage); got != 20 {
		t.Errorf("allocated storage = %d", got)
	}

	item := store.items["item-1"]
	if item.Status != models.StatusOK {
		t.Errorf("status = %q, want ok", item.Status)
	}
	if item.InstanceName == nil || *item.InstanceName != "id-0f2c9a4e-8" {
		t.Errorf("instance name = %v", item.InstanceName)
	}
	if item.RetirementRef == nil || *item.RetirementRef != "id-0f2c9a4e-8" {
		t.Errorf("retirement ref = %v", item.RetirementRef)
	}
	if item.Host == nil || !strings.Contains(*item.Host, "rds.amazonaws.com") {
		t.Errorf("host = %v", item.Host)
	}
	if item.Port == nil || *item.Port != 3306 {
		t.Errorf("port = %v", item.Port)
	}
	if item.Username == nil || *item.Username != "admin" {
		t.Errorf("username = %v", item.Username)
	}
	if len(item.PayloadResponse) == 0 {
		t.Error("provider response was not persisted")
	}

	// The stored credential is a hash of the plaintext sent to the
	// provider, never the plaintext itself.
	plaintext := aws.ToString(in.MasterUserPassword)
	if len(plaintext) != 10 {
		t.Errorf("generated password length = %d, want 10", len(plaintext))
	}
	if item.Password == nil {
		t.Fatal("password hash not stored")
	}
	if *item.Password == plaintext {
		t.Fatal("plaintext password was persisted")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*item.Password), []byte(plaintext)); err != nil {
		t.Errorf("stored hash does not match generated password: %v", err)
	}
}

func TestAWSDatabaseProvisionTimeout(t *testing.T) {
	rdsClient := &fakeRDS{
		createErr: errors.New("RequestCanceled: request timeout exceeded"),
	}
	p, store := newDatabaseFixture(newTestItem("item-1"), rdsClient)

	if err := p.Provision(context.Background(), "item-1"); err == nil {
		t.Fatal("expected error to propagate")
	}

	item := store.items["item-1"]
	if item.Status != models.StatusCritical {
		t.Errorf("status = %q, want critical", item.Status)
	}
	if !strings.Contains(strings.ToLower(item.StatusMsg), "timeout") {
		t.Errorf("status msg = %q, want timeout detail", item.StatusMsg)
	}
	if item.InstanceName != nil {
		t.Errorf("instance name = %v, want unset on failure", item.InstanceName)
	}
}

func TestAWSDatabaseRetire(t *testing.T) {
	item := newTestItem("item-1")
	item.RetirementRef = aws.String("id-0f2c9a4e-8")
	rdsClient := &fakeRDS{}
	p, store := newDatabaseFixture(item, rdsClient)

	if err := p.Retire(context.Background(), "item-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := rdsClient.deleteInput
	if in == nil {
		t.Fatal("DeleteDBInstance was not called")
	}
	if got := aws.ToString(in.DBInstanceIdentifier); got != "id-0f2c9a4e-8" {
		t.Errorf("instance identifier = %q", got)
	}
	if got := aws.ToString(in.FinalDBSnapshotIdentifier); got != "snapshot-0f2c9a" {
		t.Errorf("snapshot identifier = %q", got)
	}
	if aws.ToBool(in.SkipFinalSnapshot) {
		t.Error("final snapshot was skipped")
	}

	if got := store.items["item-1"].Status; got != models.StatusRetired {
		t.Errorf("status = %q, want retired", got)
	}
}

func TestAWSDatabaseRetireWithoutReference(t *testing.T) {
	rdsClient := &fakeRDS{}
	p, store := newDatabaseFixture(newTestItem("item-1"), rdsClient)

	if err := p.Retire(context.Background(), "item-1"); err == nil {
		t.Fatal("expected error for missing retirement reference")
	}
	if rdsClient.deleteInput != nil {
		t.Error("DeleteDBInstance was called without a reference")
	}
	if got := store.items["item-1"].Status; got != models.StatusWarning {
		t.Errorf("status = %q, want warning", got)
	}
}
