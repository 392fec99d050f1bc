package models

// ==================== Internal API DTOs ====================

// CreateOrderItemRequest is sent by the catalog layer to order one product
// instance.
type CreateOrderItemRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	ProjectID string `json:"project_id,omitempty"`

	// Answers maps product-type question ids to recorded values.
	Answers map[string]string `json:"answers,omitempty"`
}

// CreateOrderItemResponse acknowledges the order; provisioning continues in
// the background and may complete minutes later.
type CreateOrderItemResponse struct {
	OrderItemID string `json:"order_item_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// RetireOrderItemResponse acknowledges a retirement request.
type RetireOrderItemResponse struct {
	OrderItemID string `json:"order_item_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// OrderItemStatusResponse is the read-only view of an order item surfaced to
// the presentation layer. This service is the sole writer of these fields.
type OrderItemStatusResponse struct {
	OrderItemID  string  `json:"order_item_id"`
	OrderID      string  `json:"order_id"`
	ProductID    string  `json:"product_id"`
	UUID         string  `json:"uuid"`
	Status       string  `json:"status"`
	StatusMsg    string  `json:"status_msg,omitempty"`
	ExternalID   *string `json:"external_id,omitempty"`
	InstanceName *string `json:"instance_name,omitempty"`
	Host         *string `json:"host,omitempty"`
	Port         *int    `json:"port,omitempty"`
	URL          *string `json:"url,omitempty"`
	PublicIP     *string `json:"public_ip,omitempty"`
	PrivateIP    *string `json:"private_ip,omitempty"`
	Username     *string `json:"username,omitempty"`
	SetupPrice   float64 `json:"setup_price"`
	HourlyPrice  float64 `json:"hourly_price"`
	MonthlyPrice float64 `json:"monthly_price"`
	CreatedAt    string  `json:"created_at"`
}

// OrderItemLogEntry is one audit trail entry in API form.
type OrderItemLogEntry struct {
	Action    string `json:"action"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}
