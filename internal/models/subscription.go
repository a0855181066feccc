package models

import (
	"time"

	"subtrack/internal/dateutil"
)

// BillingCycle represents how often a subscription bills
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
	BillingCycleCustom  BillingCycle = "custom"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Subscription represents a recurring payment the user has signed up for.
// Amount is stored in cents. BillingDate is the anchor date from which the
// first renewal is computed; NextRenewalDate is advanced by the renewal job.
type Subscription struct {
	Base
	UserID                string             `gorm:"type:uuid;not null;index:idx_subscriptions_user_status" json:"user_id"`
	Name                  string             `gorm:"size:200;not null" json:"name"`
	CategoryID            string             `gorm:"type:uuid;not null" json:"category_id"`
	BillingCycle          BillingCycle       `gorm:"size:10;not null;default:monthly" json:"billing_cycle"`
	BillingIntervalMonths int                `gorm:"not null;default:1;check:billing_interval_months >= 1" json:"billing_interval_months"`
	Amount                int64              `gorm:"not null;check:amount >= 0" json:"amount"`
	Currency              string             `gorm:"size:3;not null;default:AUD" json:"currency"`
	BillingDate           time.Time          `gorm:"type:date;not null" json:"billing_date"`
	NextRenewalDate       *time.Time         `gorm:"type:date" json:"next_renewal_date,omitempty"`
	Status                SubscriptionStatus `gorm:"size:10;not null;default:active;index:idx_subscriptions_user_status" json:"status"`
	Notes                 string             `gorm:"type:text" json:"notes"`

	// Relationships
	Category Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Expenses []Expense `gorm:"foreignKey:SubscriptionID" json:"expenses,omitempty"`
}

// NormalizeInterval forces the billing interval to match the cycle:
// monthly is always 1, yearly always 12. Custom intervals are kept
// as supplied (the interval >= 1 check constraint still applies).
func (s *Subscription) NormalizeInterval() {
	switch s.BillingCycle {
	case BillingCycleMonthly:
		s.BillingIntervalMonths = 1
	case BillingCycleYearly:
		s.BillingIntervalMonths = 12
	}
}

// EnsureNextRenewal computes the initial next renewal date from the billing
// anchor date when none is set yet. Once a value exists it is never
// recomputed here; the renewal job owns subsequent advancement.
func (s *Subscription) EnsureNextRenewal() {
	if s.NextRenewalDate != nil || s.BillingDate.IsZero() {
		return
	}
	next := dateutil.AddMonths(s.BillingDate, s.BillingIntervalMonths)
	s.NextRenewalDate = &next
}

// PrepareForSave runs the normalization steps every write path must apply
// before handing the subscription to the storage layer.
func (s *Subscription) PrepareForSave() {
	s.NormalizeInterval()
	s.EnsureNextRenewal()
}
