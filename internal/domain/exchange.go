package domain

import "strings"

type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
)

// Exchanges lists every supported venue in display order.
var Exchanges = []Exchange{ExchangeNSE, ExchangeBSE}

var exchangeSuffix = map[Exchange]string{
	ExchangeNSE: ".NS",
	ExchangeBSE: ".BO",
}

// ParseExchange accepts an exchange token in any letter case.
func ParseExchange(s string) (Exchange, error) {
	switch Exchange(strings.ToUpper(strings.TrimSpace(s))) {
	case ExchangeNSE:
		return ExchangeNSE, nil
	case ExchangeBSE:
		return ExchangeBSE, nil
	default:
		return "", ErrInvalidExchange
	}
}

func (e Exchange) Valid() bool {
	_, ok := exchangeSuffix[e]
	return ok
}

// Suffix is the symbol qualifier used by quote vendors for this venue.
func (e Exchange) Suffix() string { return exchangeSuffix[e] }

// Currency is fixed per venue; both Indian cash markets settle in rupees.
func (e Exchange) Currency() string { return "INR" }

// Other returns the counterpart venue.
func (e Exchange) Other() Exchange {
	if e == ExchangeNSE {
		return ExchangeBSE
	}
	return ExchangeNSE
}

// BaseSymbol strips whitespace, letter case and any known venue suffix.
func BaseSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	for _, suf := range exchangeSuffix {
		if strings.HasSuffix(s, suf) {
			return strings.TrimSuffix(s, suf)
		}
	}
	return s
}

// NormalizeSymbol returns the exchange-qualified form of raw, e.g. "tcs" -> "TCS.BO".
func NormalizeSymbol(e Exchange, raw string) string {
	base := BaseSymbol(raw)
	if base == "" {
		return ""
	}
	return base + e.Suffix()
}
