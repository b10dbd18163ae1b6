package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/priceduck/pricewatch/internal/database"
	"github.com/priceduck/pricewatch/internal/models"
)

// PostgresCatalog reads the product and region catalogs from postgres.
// Selectors and region config live in jsonb columns; fields owned by other
// processes stay in the row and never travel through the engine.
type PostgresCatalog struct {
	db *database.DB
}

func NewPostgresCatalog(db *database.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) Products(ctx context.Context) ([]models.ProductSpec, error) {
	query := `
		SELECT id, name, url, rendering_mode, selectors, region_config
		FROM product
		WHERE archived_at IS NULL
		ORDER BY position, name
	`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.ProductSpec
	for rows.Next() {
		var (
			p             models.ProductSpec
			selectorsJSON []byte
			regionJSON    []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.URL, &p.RenderingMode, &selectorsJSON, &regionJSON); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		if len(selectorsJSON) > 0 {
			if err := json.Unmarshal(selectorsJSON, &p.Selectors); err != nil {
				return nil, fmt.Errorf("product %s: invalid selectors: %w", p.ID, err)
			}
		}
		if len(regionJSON) > 0 {
			var rc models.RegionConfig
			if err := json.Unmarshal(regionJSON, &rc); err != nil {
				return nil, fmt.Errorf("product %s: invalid region config: %w", p.ID, err)
			}
			p.RegionConfig = &rc
		}

		if err := p.Validate(); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (c *PostgresCatalog) Regions(ctx context.Context) ([]models.RegionDescriptor, error) {
	query := `
		SELECT code, display_name, COALESCE(aliases, '{}')
		FROM region
		ORDER BY code
	`

	rows, err := c.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	var regions []models.RegionDescriptor
	for rows.Next() {
		var r models.RegionDescriptor
		if err := rows.Scan(&r.Code, &r.DisplayName, &r.Aliases); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}

	return regions, rows.Err()
}
