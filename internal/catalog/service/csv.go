package service

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/railzwaylabs/pricecalc/internal/apperror"
	"github.com/railzwaylabs/pricecalc/internal/catalog/domain"
)

var requiredColumns = []string{
	"module", "feature", "unit", "monthly_price", "increment", "release_stage",
}

type parsedCSV struct {
	rows          []domain.Row
	skipped       int
	skippedStages map[string]int
}

// parseCatalogCSV validates the whole batch before anything is written. Any
// malformed row fails the batch; rows outside the admitted release stage are
// counted and left out.
func parseCatalogCSV(r io.Reader, stage string) (*parsedCSV, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.ErrEmptyImport
	}
	if err != nil {
		return nil, apperror.WithMessage(domain.ErrInvalidRow, "line 1: %v", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperror.WithMessage(domain.ErrMissingColumns, "missing required columns: %s", strings.Join(missing, ", "))
	}

	out := &parsedCSV{skippedStages: map[string]int{}}
	seen := make(map[domain.Key]int)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperror.WithMessage(domain.ErrInvalidRow, "line %d: %v", line, err)
		}
		if blankRecord(record) {
			continue
		}

		field := func(name string) string {
			i := index[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := domain.Row{
			Line:         line,
			Module:       field("module"),
			Feature:      field("feature"),
			Unit:         field("unit"),
			ReleaseStage: field("release_stage"),
		}
		if row.Module == "" || row.Feature == "" || row.Unit == "" {
			return nil, apperror.WithMessage(domain.ErrInvalidRow, "line %d: module, feature and unit are required", line)
		}

		price, err := strconv.ParseFloat(field("monthly_price"), 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return nil, apperror.WithMessage(domain.ErrInvalidRow, "line %d: monthly_price %q is not a non-negative number", line, field("monthly_price"))
		}
		row.MonthlyPrice = price

		increment, err := strconv.Atoi(field("increment"))
		if err != nil || increment < 1 {
			return nil, apperror.WithMessage(domain.ErrInvalidRow, "line %d: increment %q is not a positive integer", line, field("increment"))
		}
		row.Increment = increment

		if row.ReleaseStage != stage {
			out.skipped++
			out.skippedStages[row.ReleaseStage]++
			continue
		}

		if prev, dup := seen[row.Key()]; dup {
			return nil, apperror.WithMessage(domain.ErrInvalidRow, "line %d: duplicates line %d", line, prev)
		}
		seen[row.Key()] = line
		out.rows = append(out.rows, row)
	}

	if line == 1 {
		return nil, domain.ErrEmptyImport
	}
	return out, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
