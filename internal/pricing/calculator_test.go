package pricing

import (
	"math"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/google/go-cmp/cmp"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testCatalog() []catalogdomain.Item {
	return []catalogdomain.Item{
		{ID: 1, Module: "Attract", Feature: "Careers site", Unit: "site", MonthlyPrice: 100, Increment: 1},
		{ID: 2, Module: "Hire", Feature: "ATS seats", Unit: "seat", MonthlyPrice: 25, Increment: 1},
		{ID: 3, Module: "Attract", Feature: "Job boards", Unit: "board", MonthlyPrice: 10.5, Increment: 1},
		{ID: 4, Module: "Onboard", Feature: "Portal", Unit: "portal", MonthlyPrice: 40, Increment: 1},
	}
}

func itemIDs(items []catalogdomain.Item) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestSelectedItems(t *testing.T) {
	catalog := testCatalog()

	got := SelectedItems(catalog, map[snowflake.ID]int{3: 2, 1: 1, 4: 0, 99: 5})
	if diff := cmp.Diff([]snowflake.ID{1, 3}, itemIDs(got)); diff != "" {
		t.Fatalf("selected ids mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, SelectedItems(catalog, nil))
	assert.Empty(t, SelectedItems(catalog, map[snowflake.ID]int{1: 0, 2: -3}))
}

func TestMonthlyCost(t *testing.T) {
	catalog := testCatalog()
	quantities := map[snowflake.ID]int{1: 1, 2: 4, 3: 2}

	got := MonthlyCost(SelectedItems(catalog, quantities), quantities)
	assert.InDelta(t, 100+25*4+10.5*2, got, 1e-9)

	zero := map[snowflake.ID]int{1: 0, 2: 0}
	assert.Equal(t, 0.0, MonthlyCost(SelectedItems(catalog, zero), zero))
}

func TestDiscountThenFee(t *testing.T) {
	monthly := 100.0
	base := BaseAnnualCost(monthly)
	discount := DiscountAmount(base, ptr(10.0))
	annual := DiscountedAnnualCost(base, discount)
	fee := ImplementationFeeAmount(annual, ptr(5.0))

	assert.Equal(t, 1200.0, base)
	assert.Equal(t, 120.0, discount)
	assert.Equal(t, 1080.0, annual)
	assert.Equal(t, 54.0, fee)
	assert.Equal(t, 1134.0, TotalCost(annual, fee))
}

func TestDiscountedAnnualIsExact(t *testing.T) {
	for _, pct := range []float64{0, 0.5, 12.345, 33.3333, 99.99} {
		base := BaseAnnualCost(1234.56)
		discount := DiscountAmount(base, &pct)
		assert.Equal(t, base-discount, DiscountedAnnualCost(base, discount))
	}
}

func TestUnsetPercentsAreZero(t *testing.T) {
	assert.Equal(t, 0.0, DiscountAmount(1200, nil))
	assert.Equal(t, 0.0, ImplementationFeeAmount(1200, nil))
	assert.Equal(t, 0.0, DiscountAmount(1200, ptr(0.0)))
}

func TestCostPerMetric(t *testing.T) {
	assert.Nil(t, CostPerMetric(1200, nil))
	assert.Nil(t, CostPerMetric(1200, ptr(0.0)))
	assert.Nil(t, CostPerMetric(1200, ptr(-5.0)))

	got := CostPerMetric(1200, ptr(8.0))
	require.NotNil(t, got)
	assert.Equal(t, 150.0, *got)
	assert.False(t, math.IsInf(*got, 0))
}

func TestGroupByModule(t *testing.T) {
	catalog := testCatalog()
	quantities := map[snowflake.ID]int{1: 1, 2: 1, 3: 1, 4: 1}

	groups := GroupByModule(SelectedItems(catalog, quantities))

	got := make(map[string][]snowflake.ID)
	var order []string
	for _, g := range groups {
		order = append(order, g.Module)
		got[g.Module] = itemIDs(g.Items)
	}
	assert.Equal(t, []string{"Attract", "Hire", "Onboard"}, order)
	if diff := cmp.Diff(map[string][]snowflake.ID{
		"Attract": {1, 3},
		"Hire":    {2},
		"Onboard": {4},
	}, got); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, GroupByModule(nil))
}

func TestSummarize(t *testing.T) {
	d := draft.New().
		SetQuantity(1, 1).
		SetQuantity(2, 2).
		SetDiscountPercent(ptr(10.0)).
		SetFeePercent(ptr(5.0))
	d, err := d.SetMetric(draft.MetricFTEs, 9)
	require.NoError(t, err)
	d, err = d.SetMetric(draft.MetricVacancies, 0)
	require.NoError(t, err)

	s := Summarize(testCatalog(), d)

	assert.Equal(t, 2, s.SelectedCount)
	assert.Equal(t, 150.0, s.MonthlyCost)
	assert.Equal(t, 1800.0, s.BaseAnnualCost)
	assert.Equal(t, 180.0, s.DiscountAmount)
	assert.Equal(t, 1620.0, s.AnnualCost)
	assert.InDelta(t, 81.0, s.ImplementationFee, 1e-9)
	assert.InDelta(t, 1701.0, s.TotalCost, 1e-9)
	assert.True(t, s.ShowTotal)
	require.NotNil(t, s.CostPerFTE)
	assert.Equal(t, 180.0, *s.CostPerFTE)
	assert.Nil(t, s.CostPerVacancy)
	assert.Nil(t, s.CostPerApplication)

	require.Len(t, s.Groups, 2)
	assert.Equal(t, "Hire", s.Groups[1].Module)
	assert.Equal(t, "seats", s.Groups[1].Lines[0].UnitLabel)
	assert.Equal(t, 50.0, s.Groups[1].Lines[0].LineMonthly)
	assert.Equal(t, "site", s.Groups[0].Lines[0].UnitLabel)
}

func TestSummarizeHidesTotalWithoutFee(t *testing.T) {
	base := draft.New().SetQuantity(1, 1)
	assert.False(t, Summarize(testCatalog(), base).ShowTotal)
	assert.False(t, Summarize(testCatalog(), base.SetFeePercent(ptr(0.0))).ShowTotal)
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("")
	cases := map[float64]string{
		0:           "£0.00",
		1134:        "£1,134.00",
		1234.5:      "£1,234.50",
		1234567.891: "£1,234,567.89",
		0.005:       "£0.01",
		-54.2:       "-£54.20",
		-0.001:      "£0.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, f.Format(in), "format %v", in)
	}
	assert.Equal(t, "$10.00", NewFormatter("$").Format(10))
	assert.Equal(t, "", f.FormatPtr(nil))
	assert.Equal(t, "£0.00", f.Format(math.NaN()))
}
