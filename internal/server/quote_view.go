package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
)

type amountView struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

type lineView struct {
	ItemID       snowflake.ID `json:"item_id"`
	Feature      string       `json:"feature"`
	Unit         string       `json:"unit"`
	UnitLabel    string       `json:"unit_label"`
	Quantity     int          `json:"quantity"`
	MonthlyPrice amountView   `json:"monthly_price"`
	LineMonthly  amountView   `json:"line_monthly"`
}

type groupView struct {
	Module string     `json:"module"`
	Lines  []lineView `json:"lines"`
}

type summaryResponse struct {
	SelectedCount      int         `json:"selected_count"`
	MonthlyCost        amountView  `json:"monthly_cost"`
	BaseAnnualCost     amountView  `json:"base_annual_cost"`
	DiscountAmount     amountView  `json:"discount_amount"`
	AnnualCost         amountView  `json:"annual_cost"`
	ImplementationFee  amountView  `json:"implementation_fee"`
	TotalCost          amountView  `json:"total_cost"`
	ShowTotal          bool        `json:"show_total"`
	CostPerFTE         *amountView `json:"cost_per_fte,omitempty"`
	CostPerVacancy     *amountView `json:"cost_per_vacancy,omitempty"`
	CostPerApplication *amountView `json:"cost_per_application,omitempty"`
	Groups             []groupView `json:"groups"`
}

func (s *Server) amount(v float64) amountView {
	return amountView{Value: v, Formatted: s.formatter.Format(v)}
}

func (s *Server) optionalAmount(v *float64) *amountView {
	if v == nil {
		return nil
	}
	out := s.amount(*v)
	return &out
}

func (s *Server) summaryView(sum pricing.Summary) summaryResponse {
	out := summaryResponse{
		SelectedCount:      sum.SelectedCount,
		MonthlyCost:        s.amount(sum.MonthlyCost),
		BaseAnnualCost:     s.amount(sum.BaseAnnualCost),
		DiscountAmount:     s.amount(sum.DiscountAmount),
		AnnualCost:         s.amount(sum.AnnualCost),
		ImplementationFee:  s.amount(sum.ImplementationFee),
		TotalCost:          s.amount(sum.TotalCost),
		ShowTotal:          sum.ShowTotal,
		CostPerFTE:         s.optionalAmount(sum.CostPerFTE),
		CostPerVacancy:     s.optionalAmount(sum.CostPerVacancy),
		CostPerApplication: s.optionalAmount(sum.CostPerApplication),
		Groups:             make([]groupView, 0, len(sum.Groups)),
	}
	for _, g := range sum.Groups {
		gv := groupView{Module: g.Module, Lines: make([]lineView, 0, len(g.Lines))}
		for _, l := range g.Lines {
			gv.Lines = append(gv.Lines, lineView{
				ItemID:       l.ItemID,
				Feature:      l.Feature,
				Unit:         l.Unit,
				UnitLabel:    l.UnitLabel,
				Quantity:     l.Quantity,
				MonthlyPrice: s.amount(l.MonthlyPrice),
				LineMonthly:  s.amount(l.LineMonthly),
			})
		}
		out.Groups = append(out.Groups, gv)
	}
	return out
}
