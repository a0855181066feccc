package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"subtrack/internal/config"
	"subtrack/internal/dateutil"
	apperrors "subtrack/internal/errors"
	"subtrack/internal/models"
	"subtrack/internal/pagination"
)

// expenseService handles expense-related business logic.
type expenseService struct {
	db *gorm.DB
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB) ExpenseServicer {
	return &expenseService{db: db}
}

// CreateExpense creates a new expense. When the input links a subscription,
// unset fields (name, category, amount, currency, transaction date) are
// back-filled from it, so a caller may supply nothing but the subscription
// ID; explicit values always stick. The consistency rules are validated
// after back-fill and inconsistent expenses are rejected, never coerced.
func (s *expenseService) CreateExpense(userID string, input ExpenseInput) (*models.Expense, error) {
	if input.Amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	expense := &models.Expense{
		UserID:          userID,
		SubscriptionID:  input.SubscriptionID,
		Name:            input.Name,
		CategoryID:      input.CategoryID,
		Amount:          input.Amount,
		Currency:        input.Currency,
		TransactionDate: input.TransactionDate,
		Source:          input.Source,
		Notes:           input.Notes,
	}
	if expense.Source == "" {
		expense.Source = models.ExpenseSourceManual
	}

	// An explicitly supplied category must belong to the user, whether or
	// not the expense is also linked to a subscription.
	if input.CategoryID != nil {
		if err := s.verifyCategoryOwnership(userID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	if input.SubscriptionID != nil {
		var subscription models.Subscription
		if err := s.db.Where("id = ? AND user_id = ?", *input.SubscriptionID, userID).First(&subscription).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrSubscriptionNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expense.ApplySubscriptionDefaults(&subscription)
	}

	if expense.Currency == "" {
		expense.Currency = config.Get().DefaultCurrency
	}
	if expense.TransactionDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction date is required")
	}
	expense.TransactionDate = dateutil.DateOnly(expense.TransactionDate)

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.Create(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

func (s *expenseService) verifyCategoryOwnership(userID, categoryID string) error {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserExpenses retrieves a paginated, filtered list of expenses for a user,
// most recent transaction date first.
func (s *expenseService) GetUserExpenses(userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	page.Defaults()

	base := s.db.Model(&models.Expense{}).Where("user_id = ?", userID)
	base = applyExpenseFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.Expense
	if err := base.Preload("Category").Preload("Subscription").
		Scopes(pagination.Paginate(page)).
		Order("transaction_date DESC, id DESC").
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyExpenseFilters(q *gorm.DB, f ExpenseFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", dateutil.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", dateutil.DateOnly(*f.ToDate))
	}
	if f.Source != nil {
		q = q.Where("source = ?", *f.Source)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.SubscriptionID != nil {
		q = q.Where("subscription_id = ?", *f.SubscriptionID)
	}
	return q
}

// GetExpenseByID retrieves an expense by ID for a specific user
func (s *expenseService) GetExpenseByID(userID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Preload("Category").Preload("Subscription").
		Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// UpdateExpense applies the given changes to an expense. The subscription
// link and the source are fixed at creation; edits change the descriptive
// fields, and the consistency rules are re-validated before writing.
func (s *expenseService) UpdateExpense(userID, expenseID string, update ExpenseUpdate) (*models.Expense, error) {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil {
		if err := s.verifyCategoryOwnership(userID, *update.CategoryID); err != nil {
			return nil, err
		}
		expense.CategoryID = update.CategoryID
	}
	if update.Name != nil {
		expense.Name = *update.Name
	}
	if update.Amount != nil {
		if *update.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		expense.Amount = *update.Amount
	}
	if update.Currency != nil {
		expense.Currency = *update.Currency
	}
	if update.TransactionDate != nil {
		expense.TransactionDate = dateutil.DateOnly(*update.TransactionDate)
	}
	if update.Notes != nil {
		expense.Notes = *update.Notes
	}

	if err := expense.Validate(); err != nil {
		return nil, err
	}

	if err := s.db.Save(expense).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return expense, nil
}

// DeleteExpense deletes an expense.
func (s *expenseService) DeleteExpense(userID, expenseID string) error {
	expense, err := s.GetExpenseByID(userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(expense).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MonthlySpend sums the user's expense amounts whose transaction date falls
// in the given calendar month. Months with no expenses report zero.
func (s *expenseService) MonthlySpend(userID string, year int, month time.Month) (*MonthlySpendReport, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := dateutil.AddMonths(first, 1)

	var total int64
	if err := s.db.Model(&models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date < ?", userID, first, next).
		Scan(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &MonthlySpendReport{
		Month:    fmt.Sprintf("%04d-%02d", year, month),
		Total:    total,
		Currency: config.Get().DefaultCurrency,
	}, nil
}
