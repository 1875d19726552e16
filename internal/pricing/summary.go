package pricing

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/draft"
)

// Summary is everything the quote panel shows for a draft.
type Summary struct {
	SelectedCount      int
	MonthlyCost        float64
	BaseAnnualCost     float64
	DiscountAmount     float64
	AnnualCost         float64
	ImplementationFee  float64
	TotalCost          float64
	ShowTotal          bool
	CostPerFTE         *float64
	CostPerVacancy     *float64
	CostPerApplication *float64
	Groups             []LineGroup
}

type LineGroup struct {
	Module string
	Lines  []Line
}

type Line struct {
	ItemID       snowflake.ID
	Feature      string
	Unit         string
	UnitLabel    string
	Quantity     int
	MonthlyPrice float64
	LineMonthly  float64
}

func Summarize(catalog []catalogdomain.Item, d draft.Draft) Summary {
	quantities := d.Quantities()
	selected := SelectedItems(catalog, quantities)

	monthly := MonthlyCost(selected, quantities)
	base := BaseAnnualCost(monthly)
	discount := DiscountAmount(base, d.DiscountPercent())
	annual := DiscountedAnnualCost(base, discount)
	feePct := d.FeePercent()
	fee := ImplementationFeeAmount(annual, feePct)
	metrics := d.Metrics()

	s := Summary{
		SelectedCount:      len(selected),
		MonthlyCost:        monthly,
		BaseAnnualCost:     base,
		DiscountAmount:     discount,
		AnnualCost:         annual,
		ImplementationFee:  fee,
		TotalCost:          TotalCost(annual, fee),
		ShowTotal:          feePct != nil && *feePct > 0,
		CostPerFTE:         CostPerMetric(annual, metrics.FTEs),
		CostPerVacancy:     CostPerMetric(annual, metrics.Vacancies),
		CostPerApplication: CostPerMetric(annual, metrics.Applications),
	}

	for _, group := range GroupByModule(selected) {
		lg := LineGroup{Module: group.Module}
		for _, item := range group.Items {
			qty := quantities[item.ID]
			lg.Lines = append(lg.Lines, Line{
				ItemID:       item.ID,
				Feature:      item.Feature,
				Unit:         item.Unit,
				UnitLabel:    UnitLabel(item.Unit, qty),
				Quantity:     qty,
				MonthlyPrice: item.MonthlyPrice,
				LineMonthly:  item.MonthlyPrice * float64(qty),
			})
		}
		s.Groups = append(s.Groups, lg)
	}
	return s
}

// UnitLabel pluralizes the unit for display, "seat" becoming "seats".
func UnitLabel(unit string, qty int) string {
	if qty == 1 || unit == "" {
		return unit
	}
	return unit + "s"
}
