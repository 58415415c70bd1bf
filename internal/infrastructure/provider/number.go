package provider

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// flexNum decodes exchange numbers sent either as JSON numbers or as display
// strings ("1,234.50", "-", "").
type flexNum float64

func (n *flexNum) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, _ := parseNumber(s)
		*n = flexNum(v)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	*n = flexNum(d.InexactFloat64())
	return nil
}

// parseNumber reads a rendered number. Placeholders parse as 0 with ok=false.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "₹", "", "%", "", " ", "", "\u00a0", "").Replace(s)
	if s == "" || s == "-" || s == "--" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// percentChange derives change/prev*100 rounded to two places.
func percentChange(change, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return decimal.NewFromFloat(change).
		Div(decimal.NewFromFloat(prev)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
