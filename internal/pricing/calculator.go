// Package pricing derives quote costs from the catalog and a draft. Every
// function is pure; amounts keep full float precision and are only rounded
// by Formatter at the presentation boundary.
package pricing

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
)

const monthsPerYear = 12

// SelectedItems keeps catalog order and drops items with no positive quantity.
func SelectedItems(catalog []catalogdomain.Item, quantities map[snowflake.ID]int) []catalogdomain.Item {
	out := make([]catalogdomain.Item, 0, len(quantities))
	for _, item := range catalog {
		if quantities[item.ID] > 0 {
			out = append(out, item)
		}
	}
	return out
}

func MonthlyCost(selected []catalogdomain.Item, quantities map[snowflake.ID]int) float64 {
	total := 0.0
	for _, item := range selected {
		qty := quantities[item.ID]
		if qty <= 0 {
			continue
		}
		total += item.MonthlyPrice * float64(qty)
	}
	return total
}

func BaseAnnualCost(monthly float64) float64 {
	return monthly * monthsPerYear
}

// DiscountAmount is 0 when no discount is set.
func DiscountAmount(baseAnnual float64, discountPercent *float64) float64 {
	if discountPercent == nil {
		return 0
	}
	return baseAnnual * *discountPercent / 100
}

// DiscountedAnnualCost is the annual cost every other figure builds on.
func DiscountedAnnualCost(baseAnnual, discount float64) float64 {
	return baseAnnual - discount
}

// ImplementationFeeAmount applies the fee to the discounted annual cost.
func ImplementationFeeAmount(discountedAnnual float64, feePercent *float64) float64 {
	if feePercent == nil {
		return 0
	}
	return discountedAnnual * *feePercent / 100
}

func TotalCost(discountedAnnual, fee float64) float64 {
	return discountedAnnual + fee
}

// CostPerMetric returns nil unless metric is set and positive.
func CostPerMetric(annual float64, metric *float64) *float64 {
	if metric == nil || *metric <= 0 {
		return nil
	}
	v := annual / *metric
	return &v
}

type ModuleGroup struct {
	Module string               `json:"module"`
	Items  []catalogdomain.Item `json:"items"`
}

// GroupByModule groups items by module in first-seen order.
func GroupByModule(selected []catalogdomain.Item) []ModuleGroup {
	var groups []ModuleGroup
	index := make(map[string]int)
	for _, item := range selected {
		i, ok := index[item.Module]
		if !ok {
			i = len(groups)
			index[item.Module] = i
			groups = append(groups, ModuleGroup{Module: item.Module})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
