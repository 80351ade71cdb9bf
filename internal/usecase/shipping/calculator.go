package shipping

import (
	"example.com/storefront/internal/domain/money"
	domshipping "example.com/storefront/internal/domain/shipping"
)

type Calculator struct {
	settings domshipping.Settings
}

func NewCalculator(settings domshipping.Settings) *Calculator {
	return &Calculator{settings: settings}
}

func (c *Calculator) Settings() domshipping.Settings {
	return c.settings
}

// Cost returns the shipping charge in the subtotal's currency.
func (c *Calculator) Cost(subtotal money.Money, method domshipping.Method) money.Money {
	return Cost(subtotal, method, c.settings)
}

func (c *Calculator) ResolveMethod(requested domshipping.Method) (domshipping.Method, error) {
	return ResolveMethod(c.settings, requested)
}

// Cost is free for pickup, free at or above a positive threshold and the standard
// rate otherwise. A zero threshold never grants free shipping.
func Cost(subtotal money.Money, method domshipping.Method, settings domshipping.Settings) money.Money {
	if method == domshipping.MethodPickup {
		return money.Zero(subtotal.Currency)
	}
	rate := settings.RateFor(subtotal.Currency)
	if rate.FreeThreshold > 0 && subtotal.Amount >= rate.FreeThreshold {
		return money.Zero(subtotal.Currency)
	}
	return money.New(rate.StandardCost, subtotal.Currency)
}

// ResolveMethod picks the method an order will use. With selection disabled the
// single enabled method wins, delivery first.
func ResolveMethod(settings domshipping.Settings, requested domshipping.Method) (domshipping.Method, error) {
	fallback, err := defaultMethod(settings)
	if err != nil {
		return "", err
	}
	if !settings.AllowMethodSelection || requested == "" {
		return fallback, nil
	}
	switch requested {
	case domshipping.MethodDelivery:
		if settings.EnableDelivery {
			return requested, nil
		}
	case domshipping.MethodPickup:
		if settings.EnablePickup {
			return requested, nil
		}
	default:
		return "", domshipping.ErrUnknownMethod
	}
	return "", domshipping.ErrMethodUnavailable
}

func defaultMethod(settings domshipping.Settings) (domshipping.Method, error) {
	switch {
	case settings.EnableDelivery:
		return domshipping.MethodDelivery, nil
	case settings.EnablePickup:
		return domshipping.MethodPickup, nil
	default:
		return "", domshipping.ErrNoMethodEnabled
	}
}
