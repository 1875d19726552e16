package pricing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/cucumber/godog"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/draft"
)

type calculatorContext struct {
	catalog []catalogdomain.Item
	draft   draft.Draft
	summary Summary
}

func (c *calculatorContext) reset() {
	c.catalog = nil
	c.draft = draft.New()
	c.summary = Summary{}
}

func (c *calculatorContext) theCatalogContains(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		id, err := strconv.ParseInt(row.Cells[0].Value, 10, 64)
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(row.Cells[4].Value, 64)
		if err != nil {
			return err
		}
		c.catalog = append(c.catalog, catalogdomain.Item{
			ID:           snowflake.ID(id),
			Module:       row.Cells[1].Value,
			Feature:      row.Cells[2].Value,
			Unit:         row.Cells[3].Value,
			MonthlyPrice: price,
			Increment:    1,
		})
	}
	return nil
}

func (c *calculatorContext) aQuantityOfForItem(qty, id int) error {
	c.draft = c.draft.SetQuantity(snowflake.ID(id), qty)
	return nil
}

func (c *calculatorContext) anAnnualDiscountOfPercent(pct float64) error {
	c.draft = c.draft.SetDiscountPercent(&pct)
	return nil
}

func (c *calculatorContext) anImplementationFeeOfPercent(pct float64) error {
	c.draft = c.draft.SetFeePercent(&pct)
	return nil
}

func (c *calculatorContext) fTEs(n float64) error {
	next, err := c.draft.SetMetric(draft.MetricFTEs, n)
	if err != nil {
		return err
	}
	c.draft = next
	return nil
}

func (c *calculatorContext) theQuoteIsCalculated() error {
	c.summary = Summarize(c.catalog, c.draft)
	return nil
}

func expectAmount(name string, want, got float64) error {
	if math.Abs(want-got) > 1e-9 {
		return fmt.Errorf("expected %s %v, got %v", name, want, got)
	}
	return nil
}

func (c *calculatorContext) theMonthlyCostIs(v float64) error {
	return expectAmount("monthly cost", v, c.summary.MonthlyCost)
}

func (c *calculatorContext) theBaseAnnualCostIs(v float64) error {
	return expectAmount("base annual cost", v, c.summary.BaseAnnualCost)
}

func (c *calculatorContext) theDiscountAmountIs(v float64) error {
	return expectAmount("discount", v, c.summary.DiscountAmount)
}

func (c *calculatorContext) theAnnualCostIs(v float64) error {
	return expectAmount("annual cost", v, c.summary.AnnualCost)
}

func (c *calculatorContext) theImplementationFeeIs(v float64) error {
	return expectAmount("implementation fee", v, c.summary.ImplementationFee)
}

func (c *calculatorContext) theTotalCostIs(v float64) error {
	return expectAmount("total cost", v, c.summary.TotalCost)
}

func (c *calculatorContext) theTotalIsShown() error {
	if !c.summary.ShowTotal {
		return fmt.Errorf("expected the total to be shown")
	}
	return nil
}

func (c *calculatorContext) theTotalIsNotShown() error {
	if c.summary.ShowTotal {
		return fmt.Errorf("expected the total to be hidden")
	}
	return nil
}

func (c *calculatorContext) thereIsNoCostPerFTE() error {
	if c.summary.CostPerFTE != nil {
		return fmt.Errorf("expected no cost per FTE, got %v", *c.summary.CostPerFTE)
	}
	return nil
}

func (c *calculatorContext) theModulesAre(list string) error {
	var got []string
	for _, g := range c.summary.Groups {
		got = append(got, g.Module)
	}
	if strings.Join(got, ", ") != list {
		return fmt.Errorf("expected modules %q, got %q", list, strings.Join(got, ", "))
	}
	return nil
}

func (c *calculatorContext) theFormattedTotalAnnualCostIs(want string) error {
	got := NewFormatter("£").Format(c.summary.AnnualCost)
	if got != want {
		return fmt.Errorf("expected %q, got %q", want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &calculatorContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the catalog contains:$`, tc.theCatalogContains)
	ctx.Step(`^a quantity of (-?\d+) for item (\d+)$`, tc.aQuantityOfForItem)
	ctx.Step(`^an annual discount of (\d+(?:\.\d+)?) percent$`, tc.anAnnualDiscountOfPercent)
	ctx.Step(`^an implementation fee of (\d+(?:\.\d+)?) percent$`, tc.anImplementationFeeOfPercent)
	ctx.Step(`^(\d+(?:\.\d+)?) FTEs$`, tc.fTEs)

	ctx.Step(`^the quote is calculated$`, tc.theQuoteIsCalculated)

	ctx.Step(`^the monthly cost is (\d+(?:\.\d+)?)$`, tc.theMonthlyCostIs)
	ctx.Step(`^the base annual cost is (\d+(?:\.\d+)?)$`, tc.theBaseAnnualCostIs)
	ctx.Step(`^the discount amount is (\d+(?:\.\d+)?)$`, tc.theDiscountAmountIs)
	ctx.Step(`^the annual cost is (\d+(?:\.\d+)?)$`, tc.theAnnualCostIs)
	ctx.Step(`^the implementation fee is (\d+(?:\.\d+)?)$`, tc.theImplementationFeeIs)
	ctx.Step(`^the total cost is (\d+(?:\.\d+)?)$`, tc.theTotalCostIs)
	ctx.Step(`^the total is shown$`, tc.theTotalIsShown)
	ctx.Step(`^the total is not shown$`, tc.theTotalIsNotShown)
	ctx.Step(`^there is no cost per FTE$`, tc.thereIsNoCostPerFTE)
	ctx.Step(`^the modules are "([^"]*)"$`, tc.theModulesAre)
	ctx.Step(`^the formatted total annual cost is "([^"]*)"$`, tc.theFormattedTotalAnnualCostIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
