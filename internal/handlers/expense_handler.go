package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtrack/internal/errors"
	"subtrack/internal/models"
	"subtrack/internal/pagination"
	"subtrack/internal/services"
	"subtrack/internal/uuid"
)

// ExpenseHandler handles expense-related requests.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the request payload for creating an expense.
// When subscription_id is set, name, category, amount, currency, and the
// transaction date are back-filled from the subscription if left empty.
type CreateExpenseRequest struct {
	SubscriptionID  *string              `json:"subscription_id" binding:"omitempty,uuid"`
	Name            string               `json:"name" binding:"max=200"`
	CategoryID      *string              `json:"category_id" binding:"omitempty,uuid"`
	Amount          int64                `json:"amount" binding:"min=0"`
	Currency        string               `json:"currency" binding:"omitempty,iso4217"`
	TransactionDate *string              `json:"transaction_date"`
	Source          models.ExpenseSource `json:"source" binding:"omitempty,expense_source"`
	Notes           string               `json:"notes" binding:"max=2000"`
}

// ExpenseResponse represents an expense in the response
type ExpenseResponse struct {
	ID              string               `json:"id"`
	UserID          string               `json:"user_id"`
	SubscriptionID  *string              `json:"subscription_id,omitempty"`
	Name            string               `json:"name"`
	CategoryID      *string              `json:"category_id,omitempty"`
	Amount          int64                `json:"amount"`
	Currency        string               `json:"currency"`
	TransactionDate time.Time            `json:"transaction_date"`
	Source          models.ExpenseSource `json:"source"`
	Notes           string               `json:"notes"`
}

// CreateExpense handles the creation of a new expense
// @Summary     Create an expense
// @Description Create a new expense, either manual or linked to a subscription. Subscription-linked expenses inherit name, category, amount, currency, and date from the subscription unless overridden.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateExpenseRequest true "Expense details"
// @Success     201 {object} ExpenseResponse "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid or inconsistent input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subscription or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.ExpenseInput{
		SubscriptionID: req.SubscriptionID,
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Source:         req.Source,
		Notes:          req.Notes,
	}

	if req.TransactionDate != nil && *req.TransactionDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.TransactionDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		input.TransactionDate = parsed
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// GetUserExpenses handles the retrieval of expenses for the authenticated user
// @Summary     Get user expenses
// @Description Get a paginated list of expenses with optional filters, newest first
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page            query int    false "Page number (default 1)"
// @Param       page_size       query int    false "Items per page (default 20, max 100)"
// @Param       from_date       query string false "Filter by start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date         query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Param       source          query string false "Filter by source (subscription, manual)"
// @Param       category_id     query string false "Filter by category ID"
// @Param       subscription_id query string false "Filter by subscription ID"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [get]
func (h *ExpenseHandler) GetUserExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.GetUserExpenses(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseExpenseFilter(c *gin.Context) (services.ExpenseFilter, error) {
	var filter services.ExpenseFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("source"); v != "" {
		source := models.ExpenseSource(v)
		switch source {
		case models.ExpenseSourceSubscription, models.ExpenseSourceManual:
			filter.Source = &source
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid source, must be subscription or manual")
		}
	}

	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		categoryID := v
		filter.CategoryID = &categoryID
	}

	if v := c.Query("subscription_id"); v != "" {
		if !uuid.IsValid(v) {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid subscription_id")
		}
		subscriptionID := v
		filter.SubscriptionID = &subscriptionID
	}

	return filter, nil
}

// GetExpenseByID handles the retrieval of a specific expense
// @Summary     Get expense by ID
// @Description Get a specific expense by ID
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} ExpenseResponse "Expense details"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpenseByID(userID, expenseID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpenseRequest represents the request payload for updating an expense.
// Only supplied fields change; the subscription link and source cannot be
// edited after creation.
type UpdateExpenseRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=200"`
	CategoryID      *string `json:"category_id" binding:"omitempty,uuid"`
	Amount          *int64  `json:"amount" binding:"omitempty,min=0"`
	Currency        *string `json:"currency" binding:"omitempty,iso4217"`
	TransactionDate *string `json:"transaction_date"`
	Notes           *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateExpense handles the update of an existing expense
// @Summary     Update expense
// @Description Update an existing expense. Only supplied fields change; the consistency rules are re-checked before saving.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Expense ID"
// @Param       request body UpdateExpenseRequest true "Fields to update"
// @Success     200 {object} ExpenseResponse "Updated expense"
// @Failure     400 {object} ErrorResponse "Invalid or inconsistent input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.ExpenseUpdate{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Notes:      req.Notes,
	}

	if req.TransactionDate != nil && *req.TransactionDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.TransactionDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.TransactionDate = &parsed
	}

	expense, err := h.expenseService.UpdateExpense(userID, expenseID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles the deletion of an expense
// @Summary     Delete expense
// @Description Delete an expense by ID
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} MessageResponse "Expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid expense ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(userID, expenseID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

// GetMonthlySpend handles the monthly spend report
// @Summary     Get monthly spend
// @Description Get the total expense amount for a calendar month. Defaults to the current month.
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       year  query int false "Year (default current year)"
// @Param       month query int false "Month 1-12 (default current month)"
// @Success     200 {object} services.MonthlySpendReport "Monthly spend report"
// @Failure     400 {object} ErrorResponse "Invalid year or month"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/monthly-spend [get]
func (h *ExpenseHandler) GetMonthlySpend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	now := time.Now().UTC()
	year := now.Year()
	month := now.Month()

	if v := c.Query("year"); v != "" {
		parsed, parseErr := strconv.Atoi(v)
		if parseErr != nil || parsed < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year"))
			return
		}
		year = parsed
	}

	if v := c.Query("month"); v != "" {
		parsed, parseErr := strconv.Atoi(v)
		if parseErr != nil || parsed < 1 || parsed > 12 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month, must be 1-12"))
			return
		}
		month = time.Month(parsed)
	}

	report, err := h.expenseService.MonthlySpend(userID, year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
