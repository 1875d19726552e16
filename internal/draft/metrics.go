package draft

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/railzwaylabs/pricecalc/internal/apperror"
)

// MetricField names one deal metric.
type MetricField string

const (
	MetricAECSMName                 MetricField = "ae_csm_name"
	MetricChampion                  MetricField = "champion"
	MetricEconomicBuyer             MetricField = "economic_buyer"
	MetricSector                    MetricField = "sector"
	MetricFTEs                      MetricField = "ftes"
	MetricVacancies                 MetricField = "vacancies"
	MetricApplications              MetricField = "applications"
	MetricRecruitmentMarketingSpend MetricField = "recruitment_marketing_spend"
	MetricStaffingAgencySpend       MetricField = "staffing_agency_spend"
)

var ErrUnknownMetric = apperror.New(apperror.KindValidation, "unknown_metric", "unknown deal metric")
var ErrInvalidMetric = apperror.New(apperror.KindValidation, "invalid_metric", "invalid deal metric value")

// Metrics is the free-form sales context attached to a quote. Nil means unset.
type Metrics struct {
	AECSMName                 *string  `json:"ae_csm_name" gorm:"column:ae_csm_name;type:varchar(255)"`
	Champion                  *string  `json:"champion" gorm:"column:champion;type:varchar(255)"`
	EconomicBuyer             *string  `json:"economic_buyer" gorm:"column:economic_buyer;type:varchar(255)"`
	Sector                    *string  `json:"sector" gorm:"column:sector;type:varchar(255)"`
	FTEs                      *float64 `json:"ftes" gorm:"column:ftes"`
	Vacancies                 *float64 `json:"vacancies" gorm:"column:vacancies"`
	Applications              *float64 `json:"applications" gorm:"column:applications"`
	RecruitmentMarketingSpend *float64 `json:"recruitment_marketing_spend" gorm:"column:recruitment_marketing_spend"`
	StaffingAgencySpend       *float64 `json:"staffing_agency_spend" gorm:"column:staffing_agency_spend"`
}

func (m Metrics) clone() Metrics {
	return Metrics{
		AECSMName:                 cloneString(m.AECSMName),
		Champion:                  cloneString(m.Champion),
		EconomicBuyer:             cloneString(m.EconomicBuyer),
		Sector:                    cloneString(m.Sector),
		FTEs:                      cloneFloat(m.FTEs),
		Vacancies:                 cloneFloat(m.Vacancies),
		Applications:              cloneFloat(m.Applications),
		RecruitmentMarketingSpend: cloneFloat(m.RecruitmentMarketingSpend),
		StaffingAgencySpend:       cloneFloat(m.StaffingAgencySpend),
	}
}

func (m *Metrics) textField(field MetricField) **string {
	switch field {
	case MetricAECSMName:
		return &m.AECSMName
	case MetricChampion:
		return &m.Champion
	case MetricEconomicBuyer:
		return &m.EconomicBuyer
	case MetricSector:
		return &m.Sector
	}
	return nil
}

func (m *Metrics) numberField(field MetricField) **float64 {
	switch field {
	case MetricFTEs:
		return &m.FTEs
	case MetricVacancies:
		return &m.Vacancies
	case MetricApplications:
		return &m.Applications
	case MetricRecruitmentMarketingSpend:
		return &m.RecruitmentMarketingSpend
	case MetricStaffingAgencySpend:
		return &m.StaffingAgencySpend
	}
	return nil
}

func textValue(value any) (*string, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, true
		}
		return &v, true
	case *string:
		if v == nil {
			return nil, true
		}
		return textValue(*v)
	}
	return nil, false
}

func numberValue(value any) (*float64, bool) {
	var f float64
	switch v := value.(type) {
	case nil:
		return nil, true
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case *float64:
		if v == nil {
			return nil, true
		}
		f = *v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	return &f, true
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
