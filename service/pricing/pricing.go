// Package pricing computes rental line and quote totals. All functions are pure.
package pricing

import (
	"equiprental/model"
	"equiprental/util/apperr"

	"github.com/shopspring/decimal"
)

// Line is the priced form of one selection.
type Line struct {
	Modality  model.Modality  `json:"modality"`
	Period    int             `json:"period"`
	Quantity  int             `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Total     decimal.Decimal `json:"total_value"`
}

// UnitValue picks the unit price for a modality. It never falls back to
// the daily price when the requested one is missing.
func UnitValue(p model.Prices, m model.Modality) (decimal.Decimal, error) {
	var price decimal.NullDecimal
	switch m {
	case model.ModalityDaily:
		price = decimal.NewNullDecimal(p.Daily)
	case model.ModalityWeekly:
		price = p.Weekly
	case model.ModalityMonthly:
		price = p.Monthly
	default:
		return decimal.Zero, apperr.Newf(apperr.ErrValidation, "unknown modality %q", m)
	}
	if !price.Valid || !price.Decimal.IsPositive() {
		return decimal.Zero, apperr.Newf(apperr.ErrUnsupportedModality, "%s", m)
	}
	return price.Decimal, nil
}

// CheckCounts rejects non-positive quantity or period.
func CheckCounts(period, quantity int) error {
	if quantity < 1 {
		return apperr.Newf(apperr.ErrInvalidQuantity, "quantity %d", quantity)
	}
	if period < 1 {
		return apperr.Newf(apperr.ErrInvalidPeriod, "period %d", period)
	}
	return nil
}

// LineTotal = unit * period * quantity.
func LineTotal(unit decimal.Decimal, period, quantity int) (decimal.Decimal, error) {
	if err := CheckCounts(period, quantity); err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(period))).Mul(decimal.NewFromInt(int64(quantity))), nil
}

// Price validates the counts, resolves the unit price and computes the total.
func Price(p model.Prices, m model.Modality, period, quantity int) (Line, error) {
	if err := CheckCounts(period, quantity); err != nil {
		return Line{}, err
	}
	unit, err := UnitValue(p, m)
	if err != nil {
		return Line{}, err
	}
	total, err := LineTotal(unit, period, quantity)
	if err != nil {
		return Line{}, err
	}
	return Line{Modality: m, Period: period, Quantity: quantity, UnitValue: unit, Total: total}, nil
}

// QuoteTotal sums line totals.
func QuoteTotal(totals ...decimal.Decimal) decimal.Decimal {
	if len(totals) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(totals[0], totals[1:]...)
}
