package sink

import (
	"context"
	"fmt"

	"github.com/priceduck/pricewatch/internal/database"
	"github.com/priceduck/pricewatch/internal/models"
)

// PostgresSink appends observations to the price_observation table.
type PostgresSink struct {
	db *database.DB
}

func NewPostgresSink(db *database.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Emit(ctx context.Context, result *models.ScrapeResult) error {
	query := `
		INSERT INTO price_observation (
			id, product_id, region_code, amount, currency_code,
			period, plan_name, succeeded, source_url, notes, scraped_at
		) VALUES (
			$1, $2, NULLIF($3, ''), $4, NULLIF($5, ''),
			$6, NULLIF($7, ''), $8, $9, $10, $11
		)
	`

	_, err := s.db.Exec(ctx, query,
		result.ID, result.ProductID, result.RegionCode, result.Amount, result.CurrencyCode,
		string(result.Period), result.PlanName, result.Succeeded, result.SourceURL, result.Notes, result.ScrapedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert price observation: %w", err)
	}

	return nil
}
