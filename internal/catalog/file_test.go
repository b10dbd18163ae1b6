package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceduck/pricewatch/internal/models"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCatalogLoads(t *testing.T) {
	path := writeCatalog(t, `{
		"products": [
			{
				"id": "p1",
				"name": "Plus",
				"url": "https://example.com/pricing",
				"rendering_mode": "static",
				"selectors": {"price": "#price"}
			},
			{
				"id": "p2",
				"name": "Pro",
				"url": "https://example.com/pro",
				"rendering_mode": "scripted",
				"selectors": {"price": ".price", "period": ".period"},
				"region_config": {
					"switch_type": "url-param",
					"url_pattern": "?country={{REGION}}",
					"available_regions": ["US", "GB"]
				}
			}
		],
		"regions": [
			{"code": "US", "display_name": "United States", "aliases": ["usa"]},
			{"code": "GB", "display_name": "United Kingdom", "aliases": ["uk"]}
		]
	}`)

	c, err := NewFileCatalog(path)
	require.NoError(t, err)

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, models.SwitchURLParam, products[1].RegionConfig.SwitchType)

	regions, err := c.Regions(context.Background())
	require.NoError(t, err)
	assert.Len(t, regions, 2)
}

func TestFileCatalogRejectsInvalidRegionConfig(t *testing.T) {
	path := writeCatalog(t, `{
		"products": [
			{
				"id": "p1",
				"name": "Broken",
				"url": "https://example.com",
				"rendering_mode": "scripted",
				"selectors": {"price": "#p"},
				"region_config": {"switch_type": "dropdown", "available_regions": ["US"]}
			}
		]
	}`)

	_, err := NewFileCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "switch_selector")
}

func TestFileCatalogRejectsEmptyRegionList(t *testing.T) {
	path := writeCatalog(t, `{
		"products": [
			{
				"id": "p1",
				"name": "Broken",
				"url": "https://example.com",
				"rendering_mode": "scripted",
				"selectors": {"price": "#p"},
				"region_config": {"switch_type": "button", "switch_selector": "#sw"}
			}
		]
	}`)

	_, err := NewFileCatalog(path)
	assert.Error(t, err)
}

func TestFileCatalogRejectsDuplicateRegionCodes(t *testing.T) {
	path := writeCatalog(t, `{
		"regions": [
			{"code": "US", "display_name": "United States"},
			{"code": "US", "display_name": "United States again"}
		]
	}`)

	_, err := NewFileCatalog(path)
	assert.Error(t, err)
}

func TestFileCatalogRejectsMissingPlaceholder(t *testing.T) {
	path := writeCatalog(t, `{
		"products": [
			{
				"id": "p1",
				"name": "Broken",
				"url": "https://example.com",
				"rendering_mode": "static",
				"selectors": {"price": "#p"},
				"region_config": {
					"switch_type": "url-param",
					"url_pattern": "?country=fixed",
					"available_regions": ["US"]
				}
			}
		]
	}`)

	_, err := NewFileCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "placeholder")
}
