package provision

import (
	"context"
	"fmt"

	"github.com/reefcloud/catalog-provision-service/internal/models"
)

// Backend provisions and retires resources for one integration. The set of
// backends is small and statically known; a product selects one by key.
type Backend interface {
	Provision(ctx context.Context, item *models.OrderItem, product *models.Product) error
	Retire(ctx context.Context, item *models.OrderItem, product *models.Product) error
}

// Registry maps backend keys to implementations. Adding a backend is a
// registry entry, not a type-hierarchy change.
type Registry struct {
	backends map[string]Backend
}

func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

func (r *Registry) Register(key string, b Backend) {
	r.backends[key] = b
}

// Lookup resolves a backend key recorded on a product.
func (r *Registry) Lookup(key string) (Backend, error) {
	b, ok := r.backends[key]
	if !ok {
		return nil, fmt.Errorf("no backend registered for key %q", key)
	}
	return b, nil
}
