package currency

import (
	"errors"
	"math"
	"strings"
)

// SettlementCurrency is the single currency the Paystack merchant account
// receives funds in. All conversions target it.
const SettlementCurrency = "NGN"

// DefaultRates are units of NGN per one unit of the source currency.
var DefaultRates = map[string]float64{
	"EUR": 1650,
	"USD": 1529,
	"GBP": 1940,
}

// FallbackCurrency supplies the rate used for currency codes missing from the
// table. The original system silently approximated unknown currencies this
// way; the Approximate flag on the result makes that path auditable.
const FallbackCurrency = "EUR"

var ErrNonPositiveAmount = errors.New("amount must be positive")

// Conversion is the result of converting a charge amount into the settlement
// currency. MinorUnits is what the gateway bills in (kobo for NGN).
type Conversion struct {
	OriginalAmount    float64
	OriginalCurrency  string
	ConvertedAmount   float64
	ConvertedCurrency string
	MinorUnits        int64
	Rate              float64
	Approximate       bool
}

// Table maps source currencies to settlement-currency rates. It is immutable
// after construction, so Convert is a pure function of its inputs.
type Table struct {
	rates      map[string]float64
	settlement string
	fallback   string
}

func NewTable(rates map[string]float64, settlement, fallback string) *Table {
	if settlement == "" {
		settlement = SettlementCurrency
	}
	if fallback == "" {
		fallback = FallbackCurrency
	}
	if len(rates) == 0 {
		rates = DefaultRates
	}
	copied := make(map[string]float64, len(rates))
	for code, rate := range rates {
		copied[strings.ToUpper(code)] = rate
	}
	return &Table{rates: copied, settlement: settlement, fallback: fallback}
}

func (t *Table) Settlement() string {
	return t.settlement
}

// Convert turns an amount in fromCurrency into the settlement currency.
// The settlement currency itself converts at rate 1. Unknown currencies use
// the fallback currency's rate and are flagged Approximate rather than
// rejected, matching the converter's contract for display/estimation callers.
func (t *Table) Convert(amount float64, fromCurrency string) (Conversion, error) {
	if amount <= 0 {
		return Conversion{}, ErrNonPositiveAmount
	}

	code := strings.ToUpper(fromCurrency)
	conv := Conversion{
		OriginalAmount:    amount,
		OriginalCurrency:  code,
		ConvertedCurrency: t.settlement,
	}

	switch {
	case code == t.settlement:
		conv.Rate = 1
		conv.ConvertedAmount = amount
	default:
		rate, ok := t.rates[code]
		if !ok {
			rate = t.rates[t.fallback]
			conv.Approximate = true
		}
		conv.Rate = rate
		conv.ConvertedAmount = amount * rate
	}

	conv.MinorUnits = ToMinorUnits(conv.ConvertedAmount)
	return conv, nil
}

// ToMinorUnits rounds half-up into integer minor units (1/100 of a major
// unit). Rounding drift is bounded to one minor unit per conversion; the
// verifier's one-major-unit tolerance absorbs it.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Floor(amount*100 + 0.5))
}

// FromMinorUnits is the reverse boundary used when checking a gateway-reported
// amount against the booking's amount of record.
func FromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}
