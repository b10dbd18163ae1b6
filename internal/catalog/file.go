package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/priceduck/pricewatch/internal/models"
)

// FileCatalog loads products and regions from a JSON snapshot, for local
// runs without a database. Configuration invariants are enforced at load so
// broken entries surface before any fetch.
type FileCatalog struct {
	products []models.ProductSpec
	regions  []models.RegionDescriptor
}

type fileSnapshot struct {
	Products []models.ProductSpec      `json:"products"`
	Regions  []models.RegionDescriptor `json:"regions"`
}

func NewFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	for i := range snapshot.Products {
		if err := snapshot.Products[i].Validate(); err != nil {
			return nil, fmt.Errorf("catalog file %s: %w", path, err)
		}
	}

	seen := make(map[string]bool, len(snapshot.Regions))
	for _, region := range snapshot.Regions {
		if seen[region.Code] {
			return nil, fmt.Errorf("catalog file %s: duplicate region code %q", path, region.Code)
		}
		seen[region.Code] = true
	}

	return &FileCatalog{products: snapshot.Products, regions: snapshot.Regions}, nil
}

func (c *FileCatalog) Products(ctx context.Context) ([]models.ProductSpec, error) {
	return c.products, nil
}

func (c *FileCatalog) Regions(ctx context.Context) ([]models.RegionDescriptor, error) {
	return c.regions, nil
}
