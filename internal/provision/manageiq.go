package provision

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reefcloud/catalog-provision-service/internal/client"
	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// SettingsHidManageIQ is the settings-store key for the orchestration
// platform (url, username, password, email, token).
const SettingsHidManageIQ = "manageiq"

// ManageIQOrderer abstracts the HTTP client so tests can point the backend
// at an httptest server or a fake.
type ManageIQOrderer interface {
	OrderService(ctx context.Context, serviceCatalogID string, payload interface{}) (*client.ServiceOrderResponse, error)
}

// ManageIQBackend translates an order item into a templated service order
// against a ManageIQ-style orchestration platform and interprets the
// platform's acknowledgement.
type ManageIQBackend struct {
	store    OrderItemStore
	settings SettingsStore
	referer  string

	// newClient builds the orderer for one attempt from the settings map.
	// Overridable in tests.
	newClient func(settings map[string]string) ManageIQOrderer
}

func NewManageIQBackend(store OrderItemStore, settings SettingsStore, referer string) *ManageIQBackend {
	return &ManageIQBackend{
		store:    store,
		settings: settings,
		referer:  referer,
		newClient: func(settings map[string]string) ManageIQOrderer {
			return client.NewManageIQClient(settings["url"], settings["username"], settings["password"])
		},
	}
}

type miqOrderItemPayload struct {
	ID             string            `json:"id"`
	UUID           string            `json:"uuid"`
	ProductDetails map[string]string `json:"product_details"`
}

type miqResourcePayload struct {
	Href      string              `json:"href"`
	Referer   string              `json:"referer"`
	Email     string              `json:"email"`
	Token     string              `json:"token"`
	OrderItem miqOrderItemPayload `json:"order_item"`
}

type miqOrderPayload struct {
	Action   string             `json:"action"`
	Resource miqResourcePayload `json:"resource"`
}

// Provision submits the order. The outbound payload and an unknown status
// are persisted before the network call, so a crash mid-flight leaves an
// inspectable trail rather than silence.
func (b *ManageIQBackend) Provision(ctx context.Context, item *models.OrderItem, product *models.Product) error {
	settings, err := b.settings.Get(ctx, SettingsHidManageIQ)
	if err != nil {
		return fmt.Errorf("load manageiq settings: %w", err)
	}

	answers, err := b.store.GetAnswers(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("load answers: %w", err)
	}

	payload := miqOrderPayload{
		Action: "order",
		Resource: miqResourcePayload{
			Href:    fmt.Sprintf("%s/api/service_templates/%s", settings["url"], product.ServiceTypeID),
			Referer: b.referer,
			Email:   settings["email"],
			Token:   settings["token"],
			OrderItem: miqOrderItemPayload{
				ID:             item.ID,
				UUID:           item.UUID,
				ProductDetails: BuildAnswerSet(product.Questions, answers),
			},
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	item.SetStatus(models.StatusUnknown)
	item.PayloadRequest = raw
	if err := b.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist attempt start: %w", err)
	}

	resp, err := b.newClient(settings).OrderService(ctx, product.ServiceCatalogID, payload)
	if err != nil {
		item.SetStatus(models.StatusUnknown)
		item.PayloadAck = ackFromFailure(resp, err)
		return err
	}

	item.PayloadAck = resp.RawBody
	item.SetStatus(statusFromResponseCode(resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if len(resp.Results) > 0 {
			id := resp.Results[0].ID.String()
			item.ExternalID = &id
		}
		return nil
	}

	if resp.StatusCode >= 400 && resp.StatusCode <= 407 {
		return NewAuthError(fmt.Errorf("platform rejected order with status %d", resp.StatusCode))
	}

	// The platform acknowledged but with an unexpected code; the warning
	// status already records that, nothing further to do here.
	return nil
}

// Retire is not supported through the orchestration platform; the error
// surfaces as a warning on the order item.
func (b *ManageIQBackend) Retire(ctx context.Context, item *models.OrderItem, product *models.Product) error {
	return fmt.Errorf("retirement is not supported by the orchestration platform backend")
}

// statusFromResponseCode maps the platform's acknowledgement code onto the
// order item lifecycle. The 400-407 band is deliberate and preserved as is.
func statusFromResponseCode(code int) string {
	switch {
	case code >= 200 && code <= 299:
		return models.StatusPending
	case code >= 400 && code <= 407:
		return models.StatusCritical
	default:
		return models.StatusWarning
	}
}

// ackFromFailure builds the structured acknowledgement stored when no
// parseable response was obtained, with generic fallbacks when neither a
// response body nor an error message is available.
func ackFromFailure(resp *client.ServiceOrderResponse, err error) json.RawMessage {
	ack := map[string]interface{}{
		"error":   "Request Timeout",
		"message": "Action response was out of bounds, or something happened that wasn't expected",
	}
	if resp != nil && len(resp.RawBody) > 0 {
		ack["error"] = string(resp.RawBody)
	}
	if err != nil {
		ack["message"] = err.Error()
	}

	raw, marshalErr := json.Marshal(ack)
	if marshalErr != nil {
		return json.RawMessage(`{"error":"Request Timeout"}`)
	}
	return raw
}
