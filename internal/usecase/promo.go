package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/errors"
	"github.com/PPLKelompok1-2025/SI46INT-KEL1-sub002/internal/domain/model"
)

// Promo rejection reasons
const (
	promoReasonInactive     = "promo code is not active"
	promoReasonNotStarted   = "promo code is not yet valid"
	promoReasonExpired      = "promo code has expired"
	promoReasonExhausted    = "promo code usage limit reached"
	promoReasonMinCart      = "cart value is below the promo minimum"
	promoReasonUnknownType  = "promo code has an unsupported discount type"
	promoReasonDoesNotExist = "promo code does not exist"
)

// ValidatePromo checks whether promo can be applied to a cart of cartValue at now.
func ValidatePromo(promo *model.PromoCode, cartValue int64, now time.Time) error {
	if !promo.IsActive {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonInactive)
	}
	if promo.StartDate != nil && now.Before(*promo.StartDate) {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonNotStarted)
	}
	if promo.EndDate != nil && now.After(*promo.EndDate) {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonExpired)
	}
	if promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonExhausted)
	}
	if cartValue < promo.MinCartValue {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonMinCart)
	}
	if promo.DiscountType != model.DiscountTypePercentage && promo.DiscountType != model.DiscountTypeFixed {
		return domainErrors.NewPromoInvalidError(promo.Code, promoReasonUnknownType)
	}
	return nil
}

// PromoDiscount returns the discount promo gives on price, clamped to [0, price].
// Percentages are rounded half-up to whole minor units.
func PromoDiscount(promo *model.PromoCode, price int64) int64 {
	if price <= 0 {
		return 0
	}

	var discount decimal.Decimal
	switch promo.DiscountType {
	case model.DiscountTypePercentage:
		discount = decimal.NewFromInt(price).
			Mul(decimal.NewFromInt(promo.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Round(0)
	case model.DiscountTypeFixed:
		discount = decimal.NewFromInt(promo.DiscountValue)
	default:
		return 0
	}

	if discount.IsNegative() {
		return 0
	}
	if discount.GreaterThan(decimal.NewFromInt(price)) {
		return price
	}
	return discount.IntPart()
}
