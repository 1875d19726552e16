package draft

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
)

var ErrInvalidItemID = apperror.New(apperror.KindValidation, "invalid_item_id", "invalid catalog item id")

// Payload is the wire form of a draft. Quantities and metrics are loosely
// typed so raw form input can be coerced the same way the editor does.
type Payload struct {
	QuoteID         string         `json:"quote_id,omitempty"`
	Name            string         `json:"name"`
	Quantities      map[string]any `json:"quantities"`
	FeePercent      *float64       `json:"implementation_fee_percent"`
	DiscountPercent *float64       `json:"annual_discount_percent"`
	Metrics         map[string]any `json:"metrics,omitempty"`
}

// Build applies the payload to a new draft. The quote id is ignored; callers
// take it from the route.
func (p Payload) Build() (Draft, error) {
	d := New().
		SetName(p.Name).
		SetFeePercent(p.FeePercent).
		SetDiscountPercent(p.DiscountPercent)

	keys := make([]string, 0, len(p.Quantities))
	for key := range p.Quantities {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		id, err := snowflake.ParseString(strings.TrimSpace(key))
		if err != nil {
			return Draft{}, apperror.WithMessage(ErrInvalidItemID, "invalid catalog item id %q", key)
		}
		d = d.SetQuantityInput(id, p.Quantities[key])
	}

	fields := make([]string, 0, len(p.Metrics))
	for field := range p.Metrics {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		next, err := d.SetMetric(MetricField(field), p.Metrics[field])
		if err != nil {
			return Draft{}, err
		}
		d = next
	}
	return d, nil
}

// ToPayload renders a draft for the wire.
func ToPayload(d Draft) Payload {
	p := Payload{
		Name:            d.Name(),
		Quantities:      make(map[string]any, len(d.quantities)),
		FeePercent:      d.FeePercent(),
		DiscountPercent: d.DiscountPercent(),
		Metrics:         map[string]any{},
	}
	if d.quoteID != 0 {
		p.QuoteID = d.quoteID.String()
	}
	for id, qty := range d.Quantities() {
		p.Quantities[id.String()] = qty
	}
	m := d.metrics
	for field, v := range map[MetricField]*string{
		MetricAECSMName:     m.AECSMName,
		MetricChampion:      m.Champion,
		MetricEconomicBuyer: m.EconomicBuyer,
		MetricSector:        m.Sector,
	} {
		if v != nil {
			p.Metrics[string(field)] = *v
		}
	}
	for field, v := range map[MetricField]*float64{
		MetricFTEs:                      m.FTEs,
		MetricVacancies:                 m.Vacancies,
		MetricApplications:              m.Applications,
		MetricRecruitmentMarketingSpend: m.RecruitmentMarketingSpend,
		MetricStaffingAgencySpend:       m.StaffingAgencySpend,
	} {
		if v != nil {
			p.Metrics[string(field)] = *v
		}
	}
	return p
}
