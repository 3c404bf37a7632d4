package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

func TestCalculateDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		original float64
		pct      int
		want     float64
	}{
		{"fifteen percent", 1000, 15, 850},
		{"no discount", 1000, 0, 1000},
		{"free", 1000, 100, 0},
		{"rounds up", 333, 10, 300},
		{"rounds down", 199, 15, 169},
		{"negative pct clamps", 500, -5, 500},
		{"pct above hundred clamps", 500, 150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateDiscountedPrice(tt.original, tt.pct))
		})
	}
}

func TestPassRemainingDays(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, PassRemainingDays(now.Add(-48*time.Hour), now), "past expiry is never negative")
	assert.Equal(t, 0, PassRemainingDays(now, now))
	assert.Equal(t, 1, PassRemainingDays(now.Add(time.Minute), now))
	assert.Equal(t, 1, PassRemainingDays(now.Add(24*time.Hour), now))
	assert.Equal(t, 2, PassRemainingDays(now.Add(25*time.Hour), now))
	assert.Equal(t, 90, PassRemainingDays(now.Add(entity.PassValidity), now))
}

func TestShouldShowRenewalReminder(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	assert.True(t, ShouldShowRenewalReminder(now.Add(3*24*time.Hour), now))
	assert.True(t, ShouldShowRenewalReminder(now.Add(7*24*time.Hour), now), "seven days is inclusive")
	assert.False(t, ShouldShowRenewalReminder(now.Add(7*24*time.Hour+time.Second), now))
	assert.False(t, ShouldShowRenewalReminder(now.Add(30*24*time.Hour), now))
}

func TestRemainingTurfBookingsClamped(t *testing.T) {
	for free := 0; free <= 3; free++ {
		for used := free + 1; used <= free+3; used++ {
			p := &entity.PassRecord{FreeTurfBookings: free, UsedTurfBookings: used}
			assert.Equal(t, 0, p.RemainingTurfBookings(), "free=%d used=%d", free, used)
		}
	}
	assert.Equal(t, 1, (&entity.PassRecord{FreeTurfBookings: 2, UsedTurfBookings: 1}).RemainingTurfBookings())
}

func TestBenefitForInactivePass(t *testing.T) {
	now := time.Now()
	item := entity.BenefitItem{Type: entity.BenefitTypeDining, OriginalPrice: 1200}

	expired := &entity.PassRecord{ExpiryDate: now.Add(-time.Hour), DiscountPercentage: 15}
	for _, pass := range []*entity.PassRecord{nil, expired} {
		got := benefitFor(pass, item, now)
		assert.False(t, got.DiscountApplied)
		assert.Equal(t, 1200.0, got.FinalPrice)
		assert.Equal(t, 0.0, got.Savings)
		assert.Nil(t, got.DiscountPercentage)
		assert.Equal(t, entity.BenefitTypeDining, got.Type)
	}
}

func TestBenefitForActivePass(t *testing.T) {
	now := time.Now()
	pass := &entity.PassRecord{ExpiryDate: now.Add(time.Hour), DiscountPercentage: 15}

	got := benefitFor(pass, entity.BenefitItem{Type: entity.BenefitTypeEvent, OriginalPrice: 1000}, now)

	assert.True(t, got.DiscountApplied)
	assert.Equal(t, 850.0, got.FinalPrice)
	assert.Equal(t, 150.0, got.Savings)
	require.NotNil(t, got.DiscountPercentage)
	assert.Equal(t, 15, *got.DiscountPercentage)
}

func TestSummaryFor(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, entity.PassSummary{}, summaryFor(nil, now))

	expired := summaryFor(&entity.PassRecord{ExpiryDate: now.Add(-time.Hour), DiscountPercentage: 15, FreeTurfBookings: 2}, now)
	assert.False(t, expired.HasActivePass)
	assert.Equal(t, entity.PassStatusExpired, expired.Status)
	assert.Equal(t, 0, expired.DiscountPercentage)
	assert.Equal(t, 0, expired.RemainingTurfBookings)

	active := summaryFor(&entity.PassRecord{
		ExpiryDate:          now.Add(10 * 24 * time.Hour),
		DiscountPercentage:  15,
		FreeTurfBookings:    2,
		TotalDiningVouchers: 2,
		UsedDiningVouchers:  1,
	}, now)
	assert.True(t, active.HasActivePass)
	assert.Equal(t, 10, active.RemainingDays)
	assert.False(t, active.ShowRenewalReminder)
	assert.Equal(t, 2, active.RemainingTurfBookings)
	assert.Equal(t, 1, active.RemainingDining)
}
