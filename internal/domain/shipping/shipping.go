package shipping

import "strings"

type Method string

const (
	MethodDelivery Method = "delivery"
	MethodPickup   Method = "pickup"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodDelivery, MethodPickup:
		return true
	default:
		return false
	}
}

// RequiresAddress reports whether the customer must supply a postal address.
func (m Method) RequiresAddress() bool {
	return m == MethodDelivery
}

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return "", nil
	}
	if !m.IsValid() {
		return "", ErrUnknownMethod
	}
	return m, nil
}

// Rate holds minor-unit amounts. A FreeThreshold of zero disables free shipping.
type Rate struct {
	StandardCost  int64 `json:"standard_cost"`
	FreeThreshold int64 `json:"free_threshold"`
}

type Settings struct {
	AllowMethodSelection bool
	EnableDelivery       bool
	EnablePickup         bool
	Rates                map[string]Rate
	Fallback             Rate
}

// RateFor returns the configured rate for currency or the global fallback.
func (s Settings) RateFor(currency string) Rate {
	if r, ok := s.Rates[strings.ToUpper(currency)]; ok {
		return r
	}
	return s.Fallback
}
