package models

import "time"

// Backend keys. Products select their provisioning backend with one of
// these; the provisioner resolves the key against a closed registry.
const (
	BackendManageIQ    = "manageiq"
	BackendAWSDatabase = "aws_database"
	BackendAWSStorage  = "aws_storage"
)

// Product is a purchasable catalog entry. Its backend key decides which
// provisioner implementation handles items ordered from it, and its prices
// are snapshotted onto every order item at creation time.
type Product struct {
	ID               string
	Name             string
	Backend          string
	ProductTypeID    string
	// ServiceTypeID is the ManageIQ service template this product orders.
	ServiceTypeID    string
	// ServiceCatalogID is the ManageIQ catalog the template lives in.
	ServiceCatalogID string

	SetupPrice   float64
	HourlyPrice  float64
	MonthlyPrice float64

	// Questions come from the product's type; every question must appear
	// exactly once in the answer set sent to a backend.
	Questions []Question

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Question is a product-type question with a platform-facing key and a
// default used when no answer was recorded for an order item.
type Question struct {
	ID      string
	Key     string
	Default string
}

// Answer is a value recorded against an order item for one question.
type Answer struct {
	OrderItemID string
	QuestionID  string
	Value       string
}
