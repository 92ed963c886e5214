package pricing

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const (
	LocalePTBR = "pt-BR"
	LocaleEN   = "en"

	DefaultLocale = LocalePTBR
)

// DetectLocale picks a display locale from an Accept-Language header.
func DetectLocale(acceptLanguage string) string {
	s := strings.ToLower(strings.TrimSpace(acceptLanguage))
	if strings.HasPrefix(s, "en") {
		return LocaleEN
	}
	return DefaultLocale
}

// Format renders an amount as two-decimal BRL for the locale.
// Display only; nothing computes on its output.
func Format(amount decimal.Decimal, locale string) string {
	f := amount.Round(2).InexactFloat64()
	switch locale {
	case LocaleEN:
		return "R$" + humanize.FormatFloat("#,###.##", f)
	default:
		return "R$ " + humanize.FormatFloat("#.###,##", f)
	}
}
