package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/railzwaylabs/pricecalc/internal/draft"
)

// Quote is the stored header of a named quote.
type Quote struct {
	ID                       snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OwnerID                  uuid.UUID    `json:"owner_id" gorm:"type:varchar(36);not null;index:ix_quotes_owner_updated,priority:1;uniqueIndex:ux_quotes_owner_idempotency,priority:1"`
	Name                     string       `json:"name" gorm:"type:varchar(255);not null"`
	ImplementationFeePercent *float64     `json:"implementation_fee_percent"`
	AnnualDiscountPercent    *float64     `json:"annual_discount_percent"`
	draft.Metrics            `gorm:"embedded"`
	IdempotencyKey           *string   `json:"-" gorm:"type:varchar(255);uniqueIndex:ux_quotes_owner_idempotency,priority:2"`
	CreatedAt                time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt                time.Time `json:"updated_at" gorm:"not null;index:ix_quotes_owner_updated,priority:2"`
}

func (Quote) TableName() string { return "quotes" }

// Item snapshots one selected catalog row at save time. CatalogItemID is
// cleared when the catalog row is later removed.
type Item struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	QuoteID       snowflake.ID  `json:"quote_id" gorm:"not null;index"`
	CatalogItemID *snowflake.ID `json:"catalog_item_id" gorm:"index"`
	Module        string        `json:"module" gorm:"type:varchar(255);not null"`
	Feature       string        `json:"feature" gorm:"type:varchar(255);not null"`
	Unit          string        `json:"unit" gorm:"type:varchar(255);not null"`
	MonthlyPrice  float64       `json:"monthly_price" gorm:"not null"`
	Quantity      int           `json:"quantity" gorm:"not null"`
	CreatedAt     time.Time     `json:"created_at" gorm:"not null"`
}

func (Item) TableName() string { return "quote_items" }

// Snapshot converts the stored rows into the draft's load input.
func Snapshot(q Quote, items []Item) draft.Snapshot {
	s := draft.Snapshot{
		QuoteID:         q.ID,
		Name:            q.Name,
		FeePercent:      q.ImplementationFeePercent,
		DiscountPercent: q.AnnualDiscountPercent,
		Metrics:         q.Metrics,
		Items:           make([]draft.SnapshotItem, 0, len(items)),
	}
	for _, item := range items {
		s.Items = append(s.Items, draft.SnapshotItem{
			CatalogItemID: item.CatalogItemID,
			Quantity:      item.Quantity,
		})
	}
	return s
}
