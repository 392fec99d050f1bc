package provision

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"golang.org/x/crypto/bcrypt"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

const dbMasterUsername = "admin"

// rdsAPI is the slice of the RDS client this backend uses. *rds.Client
// satisfies it; tests substitute fakes.
type rdsAPI interface {
	CreateDBInstance(ctx context.Context, params *rds.CreateDBInstanceInput, optFns ...func(*rds.Options)) (*rds.CreateDBInstanceOutput, error)
	DeleteDBInstance(ctx context.Context, params *rds.DeleteDBInstanceInput, optFns ...func(*rds.Options)) (*rds.DeleteDBInstanceOutput, error)
}

// AWSDatabaseBackend provisions managed database instances directly against
// the cloud provider, bypassing the orchestration platform.
type AWSDatabaseBackend struct {
	store    OrderItemStore
	settings SettingsStore

	// newClient builds the RDS client for one attempt. Overridable in tests.
	newClient func(cfg aws.Config) rdsAPI
}

func NewAWSDatabaseBackend(store OrderItemStore, settings SettingsStore) *AWSDatabaseBackend {
	return &AWSDatabaseBackend{
		store:    store,
		settings: settings,
		newClient: func(cfg aws.Config) rdsAPI {
			return rds.NewFromConfig(cfg)
		},
	}
}

// Provision creates a database instance named after the order item's
// correlation id, with instance parameters taken from the product's answer
// set and a freshly generated master credential.
func (b *AWSDatabaseBackend) Provision(ctx context.Context, item *models.OrderItem, product *models.Product) error {
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

	password, err := generatePassword()
	if err != nil {
		return err
	}

	name := resourceName(item)
	input := &rds.CreateDBInstanceInput{
		DBInstanceIdentifier: aws.String(name),
		DBInstanceClass:      aws.String(detailOr(details, "DBInstanceClass", "db.t3.micro")),
		Engine:               aws.String(detailOr(details, "Engine", "mysql")),
		AllocatedStorage:     aws.Int32(detailInt32(details, "AllocatedStorage", 20)),
		MasterUsername:       aws.String(dbMasterUsername),
		MasterUserPassword:   aws.String(password),
	}

	out, err := b.newClient(cfg).CreateDBInstance(ctx, input)
	if err != nil {
		return fmt.Errorf("create db instance: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash master password: %w", err)
	}

	item.InstanceName = aws.String(name)
	item.RetirementRef = aws.String(name)
	item.Username = aws.String(dbMasterUsername)
	item.Password = aws.String(string(hash))

	if out != nil && out.DBInstance != nil {
		if raw, marshalErr := json.Marshal(out.DBInstance); marshalErr == nil {
			item.PayloadResponse = raw
		}
		if ep := out.DBInstance.Endpoint; ep != nil {
			if ep.Address != nil {
				item.Host = ep.Address
				item.URL = ep.Address
			}
			if ep.Port != nil {
				port := int(*ep.Port)
				item.Port = &port
			}
		}
	}

	item.SetStatus(models.StatusOK)
	return nil
}

// Retire deletes the instance captured at provision time, keeping a final
// snapshot named after the correlation id.
func (b *AWSDatabaseBackend) Retire(ctx context.Context, item *models.OrderItem, product *models.Product) error {
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

	input := &rds.DeleteDBInstanceInput{
		DBInstanceIdentifier:      item.RetirementRef,
		FinalDBSnapshotIdentifier: aws.String(snapshotName(item)),
		SkipFinalSnapshot:         aws.Bool(false),
	}

	if _, err := b.newClient(cfg).DeleteDBInstance(ctx, input); err != nil {
		return fmt.Errorf("delete db instance: %w", err)
	}

	item.SetStatus(models.StatusRetired)
	return nil
}

func detailOr(details map[string]string, key, fallback string) string {
	if v := details[key]; v != "" {
		return v
	}
	return fallback
}

func detailInt32(details map[string]string, key string, fallback int32) int32 {
	if v := details[key]; v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			return int32(n)
		}
	}
	return fallback
}
