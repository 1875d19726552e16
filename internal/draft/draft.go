// Package draft models the quote being edited as an immutable value. Every
// setter returns a new Draft and leaves the receiver untouched, so a failed
// load or a rejected edit never corrupts the previous state.
package draft

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/pricecalc/internal/apperror"
)

type State string

const (
	StateEmpty  State = "empty"
	StateLoaded State = "loaded"
)

var (
	ErrInvalidDiscount = apperror.New(apperror.KindValidation, "invalid_discount", "annual discount must be at least 0 and below 100")
	ErrInvalidFee      = apperror.New(apperror.KindValidation, "invalid_fee", "implementation fee must not be negative")
)

type Draft struct {
	quoteID    snowflake.ID
	name       string
	quantities map[snowflake.ID]int
	feePct     *float64
	discPct    *float64
	metrics    Metrics
}

// New returns an empty draft.
func New() Draft {
	return Draft{quantities: map[snowflake.ID]int{}}
}

func (d Draft) QuoteID() snowflake.ID { return d.quoteID }
func (d Draft) Name() string          { return d.name }
func (d Draft) FeePercent() *float64  { return cloneFloat(d.feePct) }
func (d Draft) DiscountPercent() *float64 {
	return cloneFloat(d.discPct)
}
func (d Draft) Metrics() Metrics { return d.metrics.clone() }

// Quantity returns the quantity for id, 0 when unselected.
func (d Draft) Quantity(id snowflake.ID) int { return d.quantities[id] }

// Quantities returns a copy of the positive quantities.
func (d Draft) Quantities() map[snowflake.ID]int {
	out := make(map[snowflake.ID]int, len(d.quantities))
	for id, qty := range d.quantities {
		if qty > 0 {
			out[id] = qty
		}
	}
	return out
}

// SelectedIDs returns the ids with a positive quantity in ascending order.
func (d Draft) SelectedIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(d.quantities))
	for id, qty := range d.quantities {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d Draft) State() State {
	if d.quoteID == 0 {
		return StateEmpty
	}
	return StateLoaded
}

func (d Draft) clone() Draft {
	out := d
	out.quantities = make(map[snowflake.ID]int, len(d.quantities))
	for id, qty := range d.quantities {
		out.quantities[id] = qty
	}
	out.feePct = cloneFloat(d.feePct)
	out.discPct = cloneFloat(d.discPct)
	out.metrics = d.metrics.clone()
	return out
}

// SetQuantity clamps negative quantities to 0. Zero removes the selection.
func (d Draft) SetQuantity(id snowflake.ID, qty int) Draft {
	out := d.clone()
	if qty <= 0 {
		delete(out.quantities, id)
		return out
	}
	out.quantities[id] = qty
	return out
}

// SetQuantityInput accepts raw user input: numbers and numeric strings are
// truncated to an integer, anything else becomes 0.
func (d Draft) SetQuantityInput(id snowflake.ID, input any) Draft {
	return d.SetQuantity(id, CoerceQuantity(input))
}

func (d Draft) SetFeePercent(v *float64) Draft {
	out := d.clone()
	out.feePct = finite(v)
	return out
}

func (d Draft) SetDiscountPercent(v *float64) Draft {
	out := d.clone()
	out.discPct = finite(v)
	return out
}

func (d Draft) SetName(name string) Draft {
	out := d.clone()
	out.name = strings.TrimSpace(name)
	return out
}

// SetMetric updates one deal metric. Only the value's type is checked.
func (d Draft) SetMetric(field MetricField, value any) (Draft, error) {
	out := d.clone()
	if p := out.metrics.textField(field); p != nil {
		v, ok := textValue(value)
		if !ok {
			return d, apperror.WithMessage(ErrInvalidMetric, "%s expects text", field)
		}
		*p = v
		return out, nil
	}
	if p := out.metrics.numberField(field); p != nil {
		v, ok := numberValue(value)
		if !ok {
			return d, apperror.WithMessage(ErrInvalidMetric, "%s expects a number", field)
		}
		*p = v
		return out, nil
	}
	return d, apperror.WithMessage(ErrUnknownMetric, "unknown deal metric %q", field)
}

func (d Draft) SetMetrics(m Metrics) Draft {
	out := d.clone()
	out.metrics = m.clone()
	return out
}

// WithQuoteID marks the draft as backed by a stored quote.
func (d Draft) WithQuoteID(id snowflake.ID) Draft {
	out := d.clone()
	out.quoteID = id
	return out
}

// Validate checks the percentage bounds a quote must satisfy before saving.
func (d Draft) Validate() error {
	if d.discPct != nil && (*d.discPct < 0 || *d.discPct >= 100) {
		return ErrInvalidDiscount
	}
	if d.feePct != nil && *d.feePct < 0 {
		return ErrInvalidFee
	}
	return nil
}

// CoerceQuantity turns raw input into a non-negative integer quantity.
func CoerceQuantity(input any) int {
	var f float64
	switch v := input.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func finite(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}
