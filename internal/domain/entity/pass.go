// internal/domain/entity/pass.go
package entity

import (
	"time"
)

// PassCollection is the document collection holding one document per issued or renewed pass
const PassCollection = "ticpin_pass_users"

// PassStatus is derived at read time from expiryDate, except for cancelled which is set externally
type PassStatus string

const (
	PassStatusActive    PassStatus = "active"
	PassStatusExpired   PassStatus = "expired"
	PassStatusCancelled PassStatus = "cancelled"
)

// Plan defaults applied on purchase and renewal
const (
	PassValidity           = 90 * 24 * time.Hour
	PassFreeTurfBookings   = 2
	PassDiningVouchers     = 2
	PassDiscountPercentage = 15
	RenewalReminderDays    = 7
)

// PassRecord field names are shared with the web front end and the reminder job, keep them verbatim.
type PassRecord struct {
	ID                  string     `json:"id" bson:"_id,omitempty"`
	Email               string     `json:"email,omitempty" bson:"email,omitempty"`
	Phone               string     `json:"phone,omitempty" bson:"phone,omitempty"`
	UserID              string     `json:"userId" bson:"userId"`
	Name                string     `json:"name,omitempty" bson:"name,omitempty"`
	PurchaseDate        time.Time  `json:"purchaseDate" bson:"purchaseDate"`
	ExpiryDate          time.Time  `json:"expiryDate" bson:"expiryDate"`
	FreeTurfBookings    int        `json:"freeTurfBookings" bson:"freeTurfBookings"`
	UsedTurfBookings    int        `json:"usedTurfBookings" bson:"usedTurfBookings"`
	TotalDiningVouchers int        `json:"totalDiningVouchers" bson:"totalDiningVouchers"`
	UsedDiningVouchers  int        `json:"usedDiningVouchers" bson:"usedDiningVouchers"`
	DiscountPercentage  int        `json:"discountPercentage" bson:"discountPercentage"`
	Status              PassStatus `json:"status" bson:"status"`
	RenewalCount        int        `json:"renewalCount" bson:"renewalCount"`
	CreatedAt           time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// StatusAt computes the effective status at now. A stored cancelled status overrides the expiry check.
func (p *PassRecord) StatusAt(now time.Time) PassStatus {
	if p.Status == PassStatusCancelled {
		return PassStatusCancelled
	}
	if !p.ExpiryDate.Before(now) {
		return PassStatusActive
	}
	return PassStatusExpired
}

// IsActiveAt reports whether the pass grants benefits at now
func (p *PassRecord) IsActiveAt(now time.Time) bool {
	return p.StatusAt(now) == PassStatusActive
}

// WithStatusAt returns a copy of the record carrying the status computed at now
func (p *PassRecord) WithStatusAt(now time.Time) *PassRecord {
	cp := *p
	cp.Status = p.StatusAt(now)
	return &cp
}

// RemainingTurfBookings never goes below zero, even when usage exceeds the entitlement
func (p *PassRecord) RemainingTurfBookings() int {
	return clampRemaining(p.FreeTurfBookings, p.UsedTurfBookings)
}

// RemainingDiningVouchers never goes below zero
func (p *PassRecord) RemainingDiningVouchers() int {
	return clampRemaining(p.TotalDiningVouchers, p.UsedDiningVouchers)
}

func clampRemaining(total, used int) int {
	if used >= total {
		return 0
	}
	return total - used
}

// DuplicateCheck is the outcome of checking an identity for an existing active pass
type DuplicateCheck struct {
	HasDuplicate   bool   `json:"hasDuplicate"`
	ExistingPassID string `json:"existingPassId,omitempty"`
	Message        string `json:"message,omitempty"`
}

// BenefitType is the kind of booking a benefit is applied to
type BenefitType string

const (
	BenefitTypeEvent  BenefitType = "event"
	BenefitTypeDining BenefitType = "dining"
	BenefitTypePlay   BenefitType = "play"
)

// BenefitItem is a priced booking item
type BenefitItem struct {
	Type          BenefitType `json:"type"`
	OriginalPrice float64     `json:"originalPrice"`
}

// BenefitResult describes the price after applying pass benefits
type BenefitResult struct {
	DiscountApplied    bool        `json:"discountApplied"`
	OriginalPrice      float64     `json:"originalPrice"`
	FinalPrice         float64     `json:"finalPrice"`
	Savings            float64     `json:"savings"`
	DiscountPercentage *int        `json:"discountPercentage,omitempty"`
	Type               BenefitType `json:"type"`
}

// PassSummary is what checkout screens display for the current pass
type PassSummary struct {
	HasActivePass         bool       `json:"hasActivePass"`
	Status                PassStatus `json:"status,omitempty"`
	RemainingDays         int        `json:"remainingDays"`
	ShowRenewalReminder   bool       `json:"showRenewalReminder"`
	DiscountPercentage    int        `json:"discountPercentage"`
	RemainingTurfBookings int        `json:"remainingTurfBookings"`
	RemainingDining       int        `json:"remainingDiningVouchers"`
	ExpiryDate            *time.Time `json:"expiryDate,omitempty"`
}

// PurchaseRequest carries the identity a new pass is issued to
type PurchaseRequest struct {
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}
