package models

import (
	"time"

	apperrors "subtrack/internal/errors"
)

// ExpenseSource classifies how an expense was booked
type ExpenseSource string

const (
	ExpenseSourceSubscription ExpenseSource = "subscription"
	ExpenseSourceManual       ExpenseSource = "manual"
)

// Expense represents a single booked spend, either entered manually or
// materialized from a subscription by the renewal job. Amount is in cents.
// The composite unique index makes the renewal job's duplicate guard
// race-safe: at most one subscription-sourced expense per subscription
// per transaction date.
type Expense struct {
	Base
	UserID          string        `gorm:"type:uuid;not null;index:idx_expenses_user_date" json:"user_id"`
	SubscriptionID  *string       `gorm:"type:uuid;uniqueIndex:uniq_expense_renewal_per_day" json:"subscription_id,omitempty"`
	Name            string        `gorm:"size:200;not null" json:"name"`
	CategoryID      *string       `gorm:"type:uuid" json:"category_id,omitempty"`
	Amount          int64         `gorm:"not null;check:amount >= 0" json:"amount"`
	Currency        string        `gorm:"size:3;not null;default:AUD" json:"currency"`
	TransactionDate time.Time     `gorm:"type:date;not null;index:idx_expenses_user_date;uniqueIndex:uniq_expense_renewal_per_day" json:"transaction_date"`
	Source          ExpenseSource `gorm:"size:12;not null;default:manual;uniqueIndex:uniq_expense_renewal_per_day" json:"source"`
	Notes           string        `gorm:"type:text" json:"notes"`

	// Relationships
	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ApplySubscriptionDefaults back-fills unset fields from the linked
// subscription and forces the source to subscription. Fields the caller
// already set are left alone, so an explicit transaction date or amount
// override sticks. Callers must pass the subscription matching
// SubscriptionID; a nil sub is a no-op.
func (e *Expense) ApplySubscriptionDefaults(sub *Subscription) {
	if sub == nil || e.SubscriptionID == nil {
		return
	}
	e.Source = ExpenseSourceSubscription
	if e.Name == "" {
		e.Name = sub.Name
	}
	if e.CategoryID == nil {
		categoryID := sub.CategoryID
		e.CategoryID = &categoryID
	}
	if e.Amount == 0 {
		e.Amount = sub.Amount
	}
	if e.Currency == "" {
		e.Currency = sub.Currency
	}
	if e.TransactionDate.IsZero() {
		e.TransactionDate = sub.BillingDate
	}
}

// Validate checks the source/subscription/category consistency rules
// before any write. It never coerces: an inconsistent expense is
// rejected so the caller can correct it.
func (e *Expense) Validate() error {
	if e.Name == "" {
		return apperrors.WithMessage(apperrors.ErrExpenseValidation, "name is required")
	}
	if e.SubscriptionID != nil && e.Source != ExpenseSourceSubscription {
		return apperrors.WithMessage(apperrors.ErrExpenseValidation, "source must be 'subscription' when linked to a subscription")
	}
	if e.SubscriptionID == nil && e.Source == ExpenseSourceSubscription {
		return apperrors.WithMessage(apperrors.ErrExpenseValidation, "subscription is required when source is 'subscription'")
	}
	if e.CategoryID == nil && e.SubscriptionID == nil {
		return apperrors.WithMessage(apperrors.ErrExpenseValidation, "category is required for manual expenses")
	}
	return nil
}
