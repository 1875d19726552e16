package draft

import "github.com/bwmarrin/snowflake"

// Snapshot is the stored form of a quote as far as the draft is concerned.
type Snapshot struct {
	QuoteID         snowflake.ID
	Name            string
	FeePercent      *float64
	DiscountPercent *float64
	Metrics         Metrics
	Items           []SnapshotItem
}

type SnapshotItem struct {
	CatalogItemID *snowflake.ID
	Quantity      int
}

// LoadResult reports the lines that could not be attached to the catalog.
type LoadResult struct {
	Draft    Draft
	Detached int
}

// LoadFrom replaces every field from a stored quote. Lines whose catalog item
// was deleted have no id and cannot be edited, so they are dropped and
// counted. Repeated ids add up.
func LoadFrom(s Snapshot) LoadResult {
	out := Draft{
		quoteID:    s.QuoteID,
		name:       s.Name,
		quantities: make(map[snowflake.ID]int, len(s.Items)),
		feePct:     finite(s.FeePercent),
		discPct:    finite(s.DiscountPercent),
		metrics:    s.Metrics.clone(),
	}
	detached := 0
	for _, item := range s.Items {
		if item.CatalogItemID == nil {
			detached++
			continue
		}
		if item.Quantity > 0 {
			out.quantities[*item.CatalogItemID] += item.Quantity
		}
	}
	return LoadResult{Draft: out, Detached: detached}
}
