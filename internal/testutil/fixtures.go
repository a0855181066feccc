package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"subtrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubscription creates an active monthly subscription. The next
// renewal date is left for the entity logic under test to fill in; set it
// directly on the returned value when a test needs a specific schedule.
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID, categoryID string, billingDate time.Time) *models.Subscription {
	t.Helper()

	subscription := &models.Subscription{
		UserID:                userID,
		Name:                  fmt.Sprintf("Test Subscription %d", nextID()),
		CategoryID:            categoryID,
		BillingCycle:          models.BillingCycleMonthly,
		BillingIntervalMonths: 1,
		Amount:                1599,
		Currency:              "AUD",
		BillingDate:           billingDate,
		Status:                models.SubscriptionStatusActive,
	}
	subscription.PrepareForSave()
	if err := db.Create(subscription).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return subscription
}

// SetNextRenewal overwrites a subscription's next renewal date directly.
func SetNextRenewal(t *testing.T, db *gorm.DB, subscription *models.Subscription, date time.Time) {
	t.Helper()

	if err := db.Model(subscription).Update("next_renewal_date", date).Error; err != nil {
		t.Fatalf("failed to set next renewal date: %v", err)
	}
	subscription.NextRenewalDate = &date
}

// CreateTestExpense creates a manual expense in the given category.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, amount int64, transactionDate time.Time) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:          userID,
		Name:            fmt.Sprintf("Test Expense %d", nextID()),
		CategoryID:      &categoryID,
		Amount:          amount,
		Currency:        "AUD",
		TransactionDate: transactionDate,
		Source:          models.ExpenseSourceManual,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
