package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "subtrack/internal/errors"
	"subtrack/internal/models"
	"subtrack/internal/pagination"
	"subtrack/internal/services"
	"subtrack/internal/uuid"
)

// SubscriptionHandler handles subscription-related requests.
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// CreateSubscriptionRequest represents the request payload for creating a subscription
type CreateSubscriptionRequest struct {
	Name                  string              `json:"name" binding:"required,max=200"`
	CategoryID            string              `json:"category_id" binding:"required,uuid"`
	BillingCycle          models.BillingCycle `json:"billing_cycle" binding:"required,billing_cycle"`
	BillingIntervalMonths int                 `json:"billing_interval_months" binding:"omitempty,min=1"`
	Amount                int64               `json:"amount" binding:"min=0"`
	Currency              string              `json:"currency" binding:"omitempty,iso4217"`
	BillingDate           string              `json:"billing_date" binding:"required"`
	NextRenewalDate       *string             `json:"next_renewal_date"`
	Notes                 string              `json:"notes" binding:"max=2000"`
}

// UpdateSubscriptionRequest represents the request payload for updating a subscription.
// Absent fields are left unchanged.
type UpdateSubscriptionRequest struct {
	Name                  *string                    `json:"name" binding:"omitempty,max=200"`
	CategoryID            *string                    `json:"category_id" binding:"omitempty,uuid"`
	BillingCycle          *models.BillingCycle       `json:"billing_cycle" binding:"omitempty,billing_cycle"`
	BillingIntervalMonths *int                       `json:"billing_interval_months" binding:"omitempty,min=1"`
	Amount                *int64                     `json:"amount" binding:"omitempty,min=0"`
	Currency              *string                    `json:"currency" binding:"omitempty,iso4217"`
	BillingDate           *string                    `json:"billing_date"`
	NextRenewalDate       *string                    `json:"next_renewal_date"`
	Status                *models.SubscriptionStatus `json:"status" binding:"omitempty,subscription_status"`
	Notes                 *string                    `json:"notes" binding:"omitempty,max=2000"`
}

// SubscriptionResponse represents a subscription in the response
type SubscriptionResponse struct {
	ID                    string                    `json:"id"`
	UserID                string                    `json:"user_id"`
	Name                  string                    `json:"name"`
	CategoryID            string                    `json:"category_id"`
	BillingCycle          models.BillingCycle       `json:"billing_cycle"`
	BillingIntervalMonths int                       `json:"billing_interval_months"`
	Amount                int64                     `json:"amount"`
	Currency              string                    `json:"currency"`
	BillingDate           time.Time                 `json:"billing_date"`
	NextRenewalDate       *time.Time                `json:"next_renewal_date,omitempty"`
	Status                models.SubscriptionStatus `json:"status"`
	Notes                 string                    `json:"notes"`
}

// CreateSubscription handles the creation of a new subscription
// @Summary     Create a subscription
// @Description Create a new recurring subscription. Monthly and yearly cycles force the interval to 1 and 12 months; custom cycles keep the supplied interval. The first renewal date is computed from the billing date unless given explicitly.
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSubscriptionRequest true "Subscription details"
// @Success     201 {object} SubscriptionResponse "Subscription created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions [post]
func (h *SubscriptionHandler) CreateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	billingDate, err := parseFlexibleTime(req.BillingDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid billing_date format, use RFC3339 or YYYY-MM-DD"))
		return
	}

	var nextRenewalDate *time.Time
	if req.NextRenewalDate != nil && *req.NextRenewalDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.NextRenewalDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid next_renewal_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		nextRenewalDate = &parsed
	}

	subscription, err := h.subscriptionService.CreateSubscription(
		userID,
		req.Name,
		req.CategoryID,
		req.BillingCycle,
		req.BillingIntervalMonths,
		req.Amount,
		req.Currency,
		billingDate,
		nextRenewalDate,
		req.Notes,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscription": subscription})
}

// GetUserSubscriptions handles the retrieval of subscriptions for the authenticated user
// @Summary     Get user subscriptions
// @Description Get a paginated list of subscriptions with optional status and category filters, ordered by next renewal date
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       status      query string false "Filter by status (active, paused, cancelled)"
// @Param       category_id query string false "Filter by category ID"
// @Success     200 {object} pagination.PageResponse[models.Subscription] "Paginated subscriptions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions [get]
func (h *SubscriptionHandler) GetUserSubscriptions(c *gin.Context) {
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

	var filter services.SubscriptionFilter

	if v := c.Query("status"); v != "" {
		status := models.SubscriptionStatus(v)
		switch status {
		case models.SubscriptionStatusActive, models.SubscriptionStatusPaused, models.SubscriptionStatusCancelled:
			filter.Status = &status
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid status, must be active, paused, or cancelled"))
			return
		}
	}

	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id"))
			return
		}
		categoryID := v
		filter.CategoryID = &categoryID
	}

	result, err := h.subscriptionService.GetUserSubscriptions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSubscriptionByID handles the retrieval of a specific subscription
// @Summary     Get subscription by ID
// @Description Get a specific subscription by ID
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} SubscriptionResponse "Subscription details"
// @Failure     400 {object} ErrorResponse "Invalid subscription ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscriptionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscription, err := h.subscriptionService.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// UpdateSubscription handles updating an existing subscription
// @Summary     Update subscription
// @Description Update an existing subscription. Cycle or interval changes are re-normalized before saving; the next renewal date is never recomputed unless cleared and re-derived explicitly.
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Subscription ID"
// @Param       request body UpdateSubscriptionRequest true "Fields to update"
// @Success     200 {object} SubscriptionResponse "Updated subscription"
// @Failure     400 {object} ErrorResponse "Invalid input or subscription ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions/{id} [put]
func (h *SubscriptionHandler) UpdateSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.SubscriptionUpdate{
		Name:                  req.Name,
		CategoryID:            req.CategoryID,
		BillingCycle:          req.BillingCycle,
		BillingIntervalMonths: req.BillingIntervalMonths,
		Amount:                req.Amount,
		Currency:              req.Currency,
		Status:                req.Status,
		Notes:                 req.Notes,
	}

	if req.BillingDate != nil && *req.BillingDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.BillingDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid billing_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.BillingDate = &parsed
	}

	if req.NextRenewalDate != nil && *req.NextRenewalDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.NextRenewalDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid next_renewal_date format, use RFC3339 or YYYY-MM-DD"))
			return
		}
		update.NextRenewalDate = &parsed
	}

	subscription, err := h.subscriptionService.UpdateSubscription(userID, subscriptionID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": subscription})
}

// DeleteSubscription handles the deletion of a subscription
// @Summary     Delete subscription
// @Description Delete a subscription by ID. Fails if any expense still references it.
// @Tags        subscriptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Subscription ID"
// @Success     200 {object} MessageResponse "Subscription deleted"
// @Failure     400 {object} ErrorResponse "Invalid subscription ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Subscription not found"
// @Failure     409 {object} ErrorResponse "Subscription still referenced by expenses"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions/{id} [delete]
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	subscriptionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subscriptionService.DeleteSubscription(userID, subscriptionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}
