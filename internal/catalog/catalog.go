// Package catalog supplies the scrape targets and the region catalog. Both
// are read-only snapshots owned by an external store; the engine only sees
// the fields it needs and never writes back.
package catalog

import (
	"context"

	"github.com/priceduck/pricewatch/internal/models"
)

type Catalog interface {
	// Products returns the scrape targets in catalog order.
	Products(ctx context.Context) ([]models.ProductSpec, error)
	// Regions returns the canonical region catalog.
	Regions(ctx context.Context) ([]models.RegionDescriptor, error)
}
