package provision

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/reefcloud/catalog-provision-service/internal/events"
	"github.com/reefcloud/catalog-provision-service/internal/metrics"
	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// OrderItemStore is the persistence surface the provisioning core needs:
// read an item at the start of an attempt, write it back at the end.
type OrderItemStore interface {
	GetByID(ctx context.Context, id string) (*models.OrderItem, error)
	Update(ctx context.Context, item *models.OrderItem) error
	GetAnswers(ctx context.Context, orderItemID string) ([]models.Answer, error)
}

// ProductStore resolves the product an order item was purchased from.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// SettingsStore is the backend settings lookup contract: a flat key/value
// map per backend identifier, re-read on every invocation.
type SettingsStore interface {
	Get(ctx context.Context, hid string) (map[string]string, error)
}

// Provisioner is the uniform entry point for provision and retire operations
// regardless of backend. It owns the cross-cutting failure handling: failures
// are absorbed into the order item's status and message, the item is
// persisted on every exit path, and only then does the error continue to the
// dispatcher.
type Provisioner struct {
	store    OrderItemStore
	products ProductStore
	registry *Registry
	metrics  *metrics.ProvisionMetrics
	events   events.Publisher
}

func NewProvisioner(store OrderItemStore, products ProductStore, registry *Registry, m *metrics.ProvisionMetrics, pub events.Publisher) *Provisioner {
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Provisioner{
		store:    store,
		products: products,
		registry: registry,
		metrics:  m,
		events:   pub,
	}
}

// Provision runs one provisioning attempt for an order item. Whatever
// happens inside the backend, the item is persisted before this returns and
// any failure is reflected in its status and message first.
func (p *Provisioner) Provision(ctx context.Context, orderItemID string) (err error) {
	item, err := p.store.GetByID(ctx, orderItemID)
	if err != nil {
		return fmt.Errorf("load order item %s: %w", orderItemID, err)
	}
	defer p.finalize(ctx, item, &err)

	backend, product, err := p.backendFor(ctx, item)
	if err != nil {
		item.SetStatus(models.StatusCritical)
		item.SetStatusMsg(err.Error())
		return err
	}

	start := time.Now()
	p.metrics.AttemptStarted(product.Backend, "provision")

	if err = backend.Provision(ctx, item, product); err != nil {
		item.SetStatus(models.StatusCritical)
		if IsAuthError(err) {
			item.SetStatusMsg(AuthErrorMsg)
			p.metrics.AttemptFailed(product.Backend, "provision", "auth")
		} else {
			item.SetStatusMsg(err.Error())
			p.metrics.AttemptFailed(product.Backend, "provision", "generic")
		}
		return err
	}

	p.metrics.AttemptSucceeded(product.Backend, "provision", time.Since(start))
	return nil
}

// Retire runs one retirement attempt. Retirement failures are less severe
// than provisioning ones: the resource may already be gone or partially
// cleaned up, so generic errors map to warning, not critical.
func (p *Provisioner) Retire(ctx context.Context, orderItemID string) (err error) {
	item, err := p.store.GetByID(ctx, orderItemID)
	if err != nil {
		return fmt.Errorf("load order item %s: %w", orderItemID, err)
	}
	defer p.finalize(ctx, item, &err)

	backend, product, err := p.backendFor(ctx, item)
	if err != nil {
		item.SetStatus(models.StatusWarning)
		item.SetStatusMsg("retirement failed: " + err.Error())
		return err
	}

	start := time.Now()
	p.metrics.AttemptStarted(product.Backend, "retire")

	if err = backend.Retire(ctx, item, product); err != nil {
		if IsAuthError(err) {
			item.SetStatus(models.StatusCritical)
			item.SetStatusMsg(AuthErrorMsg)
			p.metrics.AttemptFailed(product.Backend, "retire", "auth")
		} else {
			item.SetStatus(models.StatusWarning)
			item.SetStatusMsg("retirement failed: " + err.Error())
			p.metrics.AttemptFailed(product.Backend, "retire", "generic")
		}
		return err
	}

	p.metrics.AttemptSucceeded(product.Backend, "retire", time.Since(start))
	return nil
}

func (p *Provisioner) backendFor(ctx context.Context, item *models.OrderItem) (Backend, *models.Product, error) {
	product, err := p.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("load product %s: %w", item.ProductID, err)
	}
	backend, err := p.registry.Lookup(product.Backend)
	if err != nil {
		return nil, nil, err
	}
	return backend, product, nil
}

// finalize persists the order item on every exit path, including attempt
// timeouts: the write uses a context detached from the attempt's
// cancellation. A save failure is surfaced only when the attempt itself
// succeeded, so the original backend error always wins.
func (p *Provisioner) finalize(ctx context.Context, item *models.OrderItem, opErr *error) {
	saveCtx := context.WithoutCancel(ctx)

	if saveErr := p.store.Update(saveCtx, item); saveErr != nil {
		log.Printf("[Provisioner] Failed to persist order item %s: %v", item.ID, saveErr)
		if *opErr == nil {
			*opErr = fmt.Errorf("persist order item %s: %w", item.ID, saveErr)
		}
		return
	}

	if err := p.events.PublishStatus(saveCtx, item); err != nil {
		// Events are best effort; never turn a publish failure into a
		// provisioning failure.
		log.Printf("[Provisioner] Failed to publish status event for %s: %v", item.ID, err)
	}
}
