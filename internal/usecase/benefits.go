package usecase

import (
	"math"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

// CalculateDiscountedPrice applies a flat percentage discount and rounds to the nearest unit.
// Percentages outside 0..100 are clamped.
func CalculateDiscountedPrice(original float64, pct int) float64 {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return math.Round(original * (1 - float64(pct)/100))
}

// PassRemainingDays counts started days until expiry, never negative
func PassRemainingDays(expiry, now time.Time) int {
	diff := expiry.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(float64(diff) / float64(24*time.Hour)))
}

// ShouldShowRenewalReminder is true from RenewalReminderDays before expiry onwards
func ShouldShowRenewalReminder(expiry, now time.Time) bool {
	return PassRemainingDays(expiry, now) <= entity.RenewalReminderDays
}

// benefitFor prices item for pass; a nil or inactive pass leaves the price untouched
func benefitFor(pass *entity.PassRecord, item entity.BenefitItem, now time.Time) entity.BenefitResult {
	if pass == nil || !pass.IsActiveAt(now) || pass.DiscountPercentage <= 0 {
		return entity.BenefitResult{
			DiscountApplied: false,
			OriginalPrice:   item.OriginalPrice,
			FinalPrice:      item.OriginalPrice,
			Savings:         0,
			Type:            item.Type,
		}
	}

	pct := pass.DiscountPercentage
	final := CalculateDiscountedPrice(item.OriginalPrice, pct)
	return entity.BenefitResult{
		DiscountApplied:    true,
		OriginalPrice:      item.OriginalPrice,
		FinalPrice:         final,
		Savings:            item.OriginalPrice - final,
		DiscountPercentage: &pct,
		Type:               item.Type,
	}
}

// summaryFor builds the checkout summary of a resolved pass
func summaryFor(pass *entity.PassRecord, now time.Time) entity.PassSummary {
	if pass == nil {
		return entity.PassSummary{}
	}

	expiry := pass.ExpiryDate
	summary := entity.PassSummary{
		Status:              pass.StatusAt(now),
		RemainingDays:       PassRemainingDays(pass.ExpiryDate, now),
		ShowRenewalReminder: ShouldShowRenewalReminder(pass.ExpiryDate, now),
		ExpiryDate:          &expiry,
	}

	if pass.IsActiveAt(now) {
		summary.HasActivePass = true
		summary.DiscountPercentage = pass.DiscountPercentage
		summary.RemainingTurfBookings = pass.RemainingTurfBookings()
		summary.RemainingDining = pass.RemainingDiningVouchers()
	}

	return summary
}
