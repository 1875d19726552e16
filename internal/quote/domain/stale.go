package domain

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
)

type StaleKind string

const (
	StaleRemoved      StaleKind = "removed"
	StalePriceChanged StaleKind = "price_changed"
)

// StaleWarning flags a saved line that no longer matches the live catalog.
// It is information for the caller, never an error.
type StaleWarning struct {
	Kind          StaleKind     `json:"kind"`
	QuoteItemID   snowflake.ID  `json:"quote_item_id"`
	CatalogItemID *snowflake.ID `json:"catalog_item_id,omitempty"`
	Module        string        `json:"module"`
	Feature       string        `json:"feature"`
	Unit          string        `json:"unit"`
	SavedPrice    float64       `json:"saved_price"`
	CurrentPrice  *float64      `json:"current_price,omitempty"`
}

// DetectStale compares saved lines against the current catalog.
func DetectStale(items []Item, catalog []catalogdomain.Item) []StaleWarning {
	byID := make(map[snowflake.ID]catalogdomain.Item, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}

	var warnings []StaleWarning
	for _, item := range items {
		w := StaleWarning{
			QuoteItemID:   item.ID,
			CatalogItemID: item.CatalogItemID,
			Module:        item.Module,
			Feature:       item.Feature,
			Unit:          item.Unit,
			SavedPrice:    item.MonthlyPrice,
		}
		if item.CatalogItemID == nil {
			w.Kind = StaleRemoved
			warnings = append(warnings, w)
			continue
		}
		current, ok := byID[*item.CatalogItemID]
		if !ok {
			w.Kind = StaleRemoved
			warnings = append(warnings, w)
			continue
		}
		if current.MonthlyPrice != item.MonthlyPrice {
			price := current.MonthlyPrice
			w.Kind = StalePriceChanged
			w.CurrentPrice = &price
			warnings = append(warnings, w)
		}
	}
	return warnings
}
