// Package domain holds the pricing catalog model and its contracts.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GeneralAvailability is the only release stage admitted into the catalog.
const GeneralAvailability = "Available (General)"

const (
	SourceCSV = "csv"
	SourceCLI = "cli"
)

// Item is one sellable catalog row.
type Item struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Module       string       `json:"module" gorm:"type:varchar(255);not null;uniqueIndex:ux_pricing_modules_key,priority:1"`
	Feature      string       `json:"feature" gorm:"type:varchar(255);not null;uniqueIndex:ux_pricing_modules_key,priority:2"`
	Unit         string       `json:"unit" gorm:"type:varchar(255);not null;uniqueIndex:ux_pricing_modules_key,priority:3"`
	MonthlyPrice float64      `json:"monthly_price" gorm:"not null"`
	Increment    int          `json:"increment" gorm:"not null;default:1"`
	ReleaseStage string       `json:"release_stage" gorm:"type:varchar(255);not null"`
	CreatedBy    *uuid.UUID   `json:"created_by,omitempty" gorm:"type:varchar(36)"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Item) TableName() string { return "pricing_modules" }

func (i Item) Key() Key {
	return Key{Module: i.Module, Feature: i.Feature, Unit: i.Unit}
}

// Key is the natural identity of a catalog row across imports.
type Key struct {
	Module  string
	Feature string
	Unit    string
}

// Import records one successful catalog replacement.
type Import struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Source    string            `json:"source" gorm:"type:varchar(16);not null"`
	CreatedBy *uuid.UUID        `json:"created_by,omitempty" gorm:"type:varchar(36)"`
	Inserted  int               `json:"inserted" gorm:"not null"`
	Retained  int               `json:"retained" gorm:"not null"`
	Skipped   int               `json:"skipped" gorm:"not null"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;index"`
}

func (Import) TableName() string { return "catalog_imports" }

// SkippedStages decodes the per-stage skip counts from Metadata. Numbers
// read back from the JSON column are json.Number, not int.
func (i Import) SkippedStages() (map[string]int, error) {
	raw, ok := i.Metadata["skipped_stages"]
	if !ok {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var stages map[string]int
	if err := json.Unmarshal(b, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

// Row is a validated CSV row that has not been assigned an id yet.
type Row struct {
	Line         int
	Module       string
	Feature      string
	Unit         string
	MonthlyPrice float64
	Increment    int
	ReleaseStage string
}

func (r Row) Key() Key {
	return Key{Module: r.Module, Feature: r.Feature, Unit: r.Unit}
}
