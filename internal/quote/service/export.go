package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
	catalogdomain "github.com/railzwaylabs/pricecalc/internal/catalog/domain"
	"github.com/railzwaylabs/pricecalc/internal/draft"
	"github.com/railzwaylabs/pricecalc/internal/pricing"
	"github.com/railzwaylabs/pricecalc/internal/quote/domain"
)

// exportDoc is the data both formats render: the stored line snapshot and
// the totals it prices to.
type exportDoc struct {
	quote   domain.Quote
	lines   []catalogdomain.Item
	summary pricing.Summary
}

func (s *Service) Export(ctx context.Context, ownerID uuid.UUID, quoteID snowflake.ID, format domain.ExportFormat) (*domain.ExportFile, error) {
	if format != domain.ExportFormatCSV && format != domain.ExportFormatPDF {
		return nil, apperror.WithMessage(domain.ErrInvalidFormat, "unsupported export format %q", string(format))
	}
	q, items, err := s.fetchOwned(ctx, ownerID, quoteID)
	if err != nil {
		return nil, err
	}

	doc := buildExportDoc(*q, items)
	base := slug.Make(q.Name)
	if base == "" {
		base = "quote-" + q.ID.String()
	}

	switch format {
	case domain.ExportFormatCSV:
		data, err := s.formatCSV(doc)
		if err != nil {
			return nil, err
		}
		return &domain.ExportFile{FileName: base + ".csv", ContentType: "text/csv", Data: data}, nil
	default:
		data, err := s.formatPDF(doc)
		if err != nil {
			return nil, err
		}
		return &domain.ExportFile{FileName: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}
}

// buildExportDoc prices the saved snapshot, not the live catalog, so an
// export always matches what was agreed at save time.
func buildExportDoc(q domain.Quote, items []domain.Item) exportDoc {
	lines := make([]catalogdomain.Item, 0, len(items))
	d := draft.New().
		SetFeePercent(q.ImplementationFeePercent).
		SetDiscountPercent(q.AnnualDiscountPercent).
		SetMetrics(q.Metrics)
	for _, item := range items {
		// quote item ids stand in for catalog ids so detached lines still render
		lineID := item.ID
		lines = append(lines, catalogdomain.Item{
			ID:           lineID,
			Module:       item.Module,
			Feature:      item.Feature,
			Unit:         item.Unit,
			MonthlyPrice: item.MonthlyPrice,
		})
		d = d.SetQuantity(lineID, d.Quantity(lineID)+item.Quantity)
	}
	return exportDoc{
		quote:   q,
		lines:   lines,
		summary: pricing.Summarize(lines, d),
	}
}

func (s *Service) formatCSV(doc exportDoc) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"module", "feature", "unit", "quantity", "monthly_price", "line_monthly"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, group := range doc.summary.Groups {
		for _, line := range group.Lines {
			row := []string{
				group.Module,
				line.Feature,
				line.Unit,
				strconv.Itoa(line.Quantity),
				formatAmount(line.MonthlyPrice),
				formatAmount(line.LineMonthly),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	sum := doc.summary
	totals := [][]string{
		{"monthly_cost", formatAmount(sum.MonthlyCost)},
		{"base_annual_cost", formatAmount(sum.BaseAnnualCost)},
		{"discount_amount", formatAmount(sum.DiscountAmount)},
		{"annual_cost", formatAmount(sum.AnnualCost)},
	}
	if sum.ShowTotal {
		totals = append(totals,
			[]string{"implementation_fee", formatAmount(sum.ImplementationFee)},
			[]string{"total_cost", formatAmount(sum.TotalCost)},
		)
	}
	if err := w.Write(nil); err != nil {
		return nil, err
	}
	for _, t := range totals {
		if err := w.Write(t); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (s *Service) formatPDF(doc exportDoc) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	s.addPDFHeader(m, doc)
	s.addPDFLines(m, doc)
	s.addPDFTotals(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

func (s *Service) addPDFHeader(m core.Maroto, doc exportDoc) {
	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(doc.quote.Name, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
		row.New(7).Add(
			col.New(6).Add(
				text.New("Quote "+doc.quote.ID.String(), props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(6).Add(
				text.New("Updated "+doc.quote.UpdatedAt.UTC().Format("2 Jan 2006"), props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
	)

	var details []string
	if v := doc.quote.AECSMName; v != nil {
		details = append(details, "AE/CSM: "+*v)
	}
	if v := doc.quote.Champion; v != nil {
		details = append(details, "Champion: "+*v)
	}
	if v := doc.quote.EconomicBuyer; v != nil {
		details = append(details, "Economic buyer: "+*v)
	}
	if v := doc.quote.Sector; v != nil {
		details = append(details, "Sector: "+*v)
	}
	if len(details) > 0 {
		m.AddRows(row.New(7).Add(
			col.New(12).Add(text.New(strings.Join(details, "   "), props.Text{Size: 8, Align: align.Left, Color: grey})),
		))
	}
	m.AddRows(row.New(4))
}

func (s *Service) addPDFLines(m core.Maroto, doc exportDoc) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	headerRight := headerText
	headerRight.Align = align.Right

	m.AddRows(row.New(8).Add(
		col.New(6).Add(text.New("Feature", headerText)).WithStyle(headerCell),
		col.New(2).Add(text.New("Quantity", headerRight)).WithStyle(headerCell),
		col.New(2).Add(text.New("Monthly price", headerRight)).WithStyle(headerCell),
		col.New(2).Add(text.New("Monthly", headerRight)).WithStyle(headerCell),
	))

	moduleCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	base := props.Text{Size: 8, Align: align.Left}
	right := base
	right.Align = align.Right

	for _, group := range doc.summary.Groups {
		m.AddRows(row.New(7).Add(
			col.New(12).Add(text.New(group.Module, props.Text{Size: 8, Style: fontstyle.Bold})).WithStyle(moduleCell),
		))
		for _, line := range group.Lines {
			m.AddRows(row.New(6).Add(
				col.New(6).Add(text.New("  "+line.Feature, base)),
				col.New(2).Add(text.New(fmt.Sprintf("%d %s", line.Quantity, line.UnitLabel), right)),
				col.New(2).Add(text.New(s.formatter.Format(line.MonthlyPrice), right)),
				col.New(2).Add(text.New(s.formatter.Format(line.LineMonthly), right)),
			))
		}
	}
	m.AddRows(row.New(5))
}

func (s *Service) addPDFTotals(m core.Maroto, doc exportDoc) {
	sum := doc.summary
	label := props.Text{Size: 9, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}

	add := func(name string, amount float64) {
		m.AddRows(row.New(7).Add(
			col.New(9).Add(text.New(name, label)),
			col.New(3).Add(text.New(s.formatter.Format(amount), value)),
		))
	}

	add("Monthly cost", sum.MonthlyCost)
	add("Annual cost before discount", sum.BaseAnnualCost)
	if pct := doc.quote.AnnualDiscountPercent; pct != nil && *pct > 0 {
		add(fmt.Sprintf("Annual discount (%s%%)", strconv.FormatFloat(*pct, 'f', -1, 64)), -sum.DiscountAmount)
	}
	add("Annual cost", sum.AnnualCost)
	if sum.ShowTotal {
		add(fmt.Sprintf("Implementation fee (%s%%)", strconv.FormatFloat(*doc.quote.ImplementationFeePercent, 'f', -1, 64)), sum.ImplementationFee)
		add("Total first year", sum.TotalCost)
	}

	perMetric := []struct {
		name string
		v    *float64
	}{
		{"Cost per FTE", sum.CostPerFTE},
		{"Cost per vacancy", sum.CostPerVacancy},
		{"Cost per application", sum.CostPerApplication},
	}
	for _, pm := range perMetric {
		if pm.v != nil {
			add(pm.name, *pm.v)
		}
	}
}
