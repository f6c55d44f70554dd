package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxQuantityPerPurchase caps a single purchase line.
const MaxQuantityPerPurchase = 10

// Discount kinds recorded on a quote.
const (
	DiscountDatePromo     = "DATE_PROMO"
	DiscountReferralPromo = "REFERRAL_PROMO"
	DiscountPoints        = "POINTS"
	DiscountCoupon        = "REGISTER_COUPON"
)

const (
	ReasonOK             = ""
	ReasonBadQuantity    = "quantity_out_of_range"
	ReasonSoldOut        = "sold_out"
	ReasonNotEnoughStock = "not_enough_tickets"
)

var (
	hundred       = decimal.NewFromInt(100)
	couponPercent = decimal.NewFromInt(10)
)

// Discount is one resolved reduction applied to a purchase line.
type Discount struct {
	Kind   string
	Amount decimal.Decimal
}

// Quote is the priced outcome of one purchase line.
type Quote struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	Total         decimal.Decimal
}

// CheckAvailability validates the requested quantity against stock. It is a
// pre-check only; the conditional decrement at commit time is authoritative.
func CheckAvailability(quantity int, remaining int) string {
	if quantity < 1 || quantity > MaxQuantityPerPurchase {
		return ReasonBadQuantity
	}
	if remaining <= 0 {
		return ReasonSoldOut
	}
	if remaining < quantity {
		return ReasonNotEnoughStock
	}
	return ReasonOK
}

// DatePromoActive reports whether a date promo window covers now.
func DatePromoActive(now time.Time, startsAt time.Time, endsAt time.Time, archived bool) bool {
	if archived {
		return false
	}
	if now.Before(startsAt) || now.After(endsAt) {
		return false
	}
	return true
}

// PercentOf computes price * percent / 100.
func PercentOf(price decimal.Decimal, percent decimal.Decimal) decimal.Decimal {
	return price.Mul(percent).Div(hundred)
}

// CouponDiscount is the one-time registration coupon: ten percent of the
// pre-discount line subtotal.
func CouponDiscount(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return PercentOf(subtotal, couponPercent)
}

// LineTotal prices one line: unitPrice*quantity minus the sum of all
// discounts, clamped at zero. Excess discount is absorbed, never refunded.
func LineTotal(unitPrice decimal.Decimal, quantity int, discounts []Discount) Quote {
	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	discountTotal := decimal.Zero
	for _, d := range discounts {
		if d.Amount.IsNegative() {
			continue
		}
		discountTotal = discountTotal.Add(d.Amount)
	}
	total := subtotal.Sub(discountTotal)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Quote{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		Total:         total,
	}
}
