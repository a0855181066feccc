package services

import (
	"time"

	"subtrack/internal/models"
	"subtrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// SubscriptionFilter holds optional filter parameters for listing subscriptions.
type SubscriptionFilter struct {
	Status     *models.SubscriptionStatus
	CategoryID *string
}

// SubscriptionUpdate holds the fields that may change on an existing
// subscription. Nil pointers mean "leave unchanged".
type SubscriptionUpdate struct {
	Name                  *string
	CategoryID            *string
	BillingCycle          *models.BillingCycle
	BillingIntervalMonths *int
	Amount                *int64
	Currency              *string
	BillingDate           *time.Time
	NextRenewalDate       *time.Time
	Status                *models.SubscriptionStatus
	Notes                 *string
}

// SubscriptionServicer defines the contract for subscription-related business logic.
type SubscriptionServicer interface {
	CreateSubscription(userID, name, categoryID string, cycle models.BillingCycle, intervalMonths int, amount int64, currency string, billingDate time.Time, nextRenewalDate *time.Time, notes string) (*models.Subscription, error)
	GetUserSubscriptions(userID string, page pagination.PageRequest, filter SubscriptionFilter) (*pagination.PageResponse[models.Subscription], error)
	GetSubscriptionByID(userID, subscriptionID string) (*models.Subscription, error)
	UpdateSubscription(userID, subscriptionID string, update SubscriptionUpdate) (*models.Subscription, error)
	DeleteSubscription(userID, subscriptionID string) error
}

// ExpenseInput holds the caller-supplied fields for a new expense. Unset
// fields of a subscription-linked expense are back-filled from the
// subscription before validation.
type ExpenseInput struct {
	SubscriptionID  *string
	Name            string
	CategoryID      *string
	Amount          int64
	Currency        string
	TransactionDate time.Time
	Source          models.ExpenseSource
	Notes           string
}

// ExpenseUpdate holds the fields that may change on an existing expense.
// Nil pointers mean "leave unchanged". The subscription link and source
// are fixed at creation and cannot be edited.
type ExpenseUpdate struct {
	Name            *string
	CategoryID      *string
	Amount          *int64
	Currency        *string
	TransactionDate *time.Time
	Notes           *string
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	FromDate       *time.Time
	ToDate         *time.Time
	Source         *models.ExpenseSource
	CategoryID     *string
	SubscriptionID *string
}

// MonthlySpendReport aggregates expense amounts for one calendar month.
type MonthlySpendReport struct {
	Month    string `json:"month"`
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, input ExpenseInput) (*models.Expense, error)
	GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	GetExpenseByID(userID, expenseID string) (*models.Expense, error)
	UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error)
	DeleteExpense(userID, expenseID string) error
	MonthlySpend(userID string, year int, month time.Month) (*MonthlySpendReport, error)
}

// RenewalServicer defines the contract for the renewal batch job.
type RenewalServicer interface {
	Run(today time.Time) (created, skipped int, err error)
}
