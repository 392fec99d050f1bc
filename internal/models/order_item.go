package models

import (
	"encoding/json"
	"time"
)

// Provision status constants. These are the only values ever written to
// order_items.status; an item never leaves StatusRetired once it is set.
const (
	StatusOK       = "ok"
	StatusWarning  = "warning"
	StatusCritical = "critical"
	StatusUnknown  = "unknown"
	StatusPending  = "pending"
	StatusRetired  = "retired"
)

// MaxStatusMsgLen bounds status_msg so it always fits the persisted column.
const MaxStatusMsgLen = 255

// OrderItem is one purchased, provisionable unit within an order. It is the
// single record the provisioning core reads at the start of an attempt and
// writes back at the end, success or failure.
type OrderItem struct {
	ID        string
	OrderID   string
	ProjectID *string
	ProductID string

	// UUID is the correlation id embedded in every outbound request so
	// asynchronous responses can be matched back. Immutable once assigned.
	UUID string

	Status    string
	StatusMsg string

	// ExternalID is the identifier the backend assigned once it accepted
	// the request (e.g. the platform's service request id).
	ExternalID *string

	// Raw outbound/inbound payloads, stored verbatim for audit and debugging.
	PayloadRequest  json.RawMessage
	PayloadAck      json.RawMessage
	PayloadResponse json.RawMessage

	// RetirementRef is the backend-specific identifier needed to tear the
	// resource down again (RDS instance identifier, S3 bucket name). It is
	// captured and validated at provision time, not dug out of stored
	// payloads at retire time.
	RetirementRef *string

	// Connection facts populated on successful provisioning.
	InstanceName *string
	Host         *string
	Port         *int
	URL          *string
	PublicIP     *string
	PrivateIP    *string
	Username     *string
	// Password holds only a bcrypt hash when the credential was generated
	// by a backend; plaintext is never persisted.
	Password *string

	// Price snapshot copied from the product when the item is created.
	// Frozen thereafter, so later product price changes never leak in.
	SetupPrice   float64
	HourlyPrice  float64
	MonthlyPrice float64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// SetStatus moves the item's lifecycle forward. Retired is terminal: once an
// item is retired no later attempt may flip it back.
func (o *OrderItem) SetStatus(status string) {
	if o.Status == StatusRetired {
		return
	}
	o.Status = status
}

// SetStatusMsg records a diagnostic message, truncated to the column bound.
// Truncation never fails, whatever the source text looks like.
func (o *OrderItem) SetStatusMsg(msg string) {
	o.StatusMsg = TruncateMsg(msg)
}

// TruncateMsg bounds a diagnostic string to MaxStatusMsgLen bytes.
func TruncateMsg(msg string) string {
	if len(msg) > MaxStatusMsgLen {
		return msg[:MaxStatusMsgLen]
	}
	return msg
}

// OrderItemLog is one entry in an order item's provisioning audit trail.
type OrderItemLog struct {
	ID          string
	OrderItemID string
	Action      string
	Status      string
	Message     string
	CreatedAt   time.Time
}
