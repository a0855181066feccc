package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"subtrack/internal/dateutil"
	apperrors "subtrack/internal/errors"
	"subtrack/internal/models"
	"subtrack/internal/pagination"
)

// subscriptionService handles subscription-related business logic.
type subscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB) SubscriptionServicer {
	return &subscriptionService{db: db}
}

// CreateSubscription creates a new subscription. The billing interval is
// normalized from the cycle and, when no explicit next renewal date is
// supplied, the first one is computed from the billing anchor date.
func (s *subscriptionService) CreateSubscription(
	userID, name, categoryID string,
	cycle models.BillingCycle,
	intervalMonths int,
	amount int64,
	currency string,
	billingDate time.Time,
	nextRenewalDate *time.Time,
	notes string,
) (*models.Subscription, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription name is required")
	}
	if amount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if cycle == models.BillingCycleCustom && intervalMonths < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "billing interval must be at least 1 month")
	}
	if billingDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "billing date is required")
	}

	// Verify the category exists and belongs to the user
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if nextRenewalDate != nil {
		normalized := dateutil.DateOnly(*nextRenewalDate)
		nextRenewalDate = &normalized
	}

	subscription := &models.Subscription{
		UserID:                userID,
		Name:                  name,
		CategoryID:            categoryID,
		BillingCycle:          cycle,
		BillingIntervalMonths: intervalMonths,
		Amount:                amount,
		Currency:              currency,
		BillingDate:           dateutil.DateOnly(billingDate),
		NextRenewalDate:       nextRenewalDate,
		Status:                models.SubscriptionStatusActive,
		Notes:                 notes,
	}
	subscription.PrepareForSave()

	if err := s.db.Create(subscription).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subscription, nil
}

// GetUserSubscriptions retrieves a paginated, filtered list of subscriptions for a user.
func (s *subscriptionService) GetUserSubscriptions(userID string, page pagination.PageRequest, filter SubscriptionFilter) (*pagination.PageResponse[models.Subscription], error) {
	page.Defaults()

	base := s.db.Model(&models.Subscription{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var subscriptions []models.Subscription
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("next_renewal_date, name").
		Find(&subscriptions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(subscriptions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSubscriptionByID retrieves a subscription by ID for a specific user
func (s *subscriptionService) GetSubscriptionByID(userID, subscriptionID string) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", subscriptionID, userID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &subscription, nil
}

// UpdateSubscription applies the given changes and re-runs the save-time
// normalization (interval from cycle, initial next renewal) before writing.
func (s *subscriptionService) UpdateSubscription(userID, subscriptionID string, update SubscriptionUpdate) (*models.Subscription, error) {
	subscription, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil && *update.CategoryID != subscription.CategoryID {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *update.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		subscription.CategoryID = *update.CategoryID
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "subscription name is required")
		}
		subscription.Name = *update.Name
	}
	if update.BillingCycle != nil {
		subscription.BillingCycle = *update.BillingCycle
	}
	if update.BillingIntervalMonths != nil {
		if *update.BillingIntervalMonths < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "billing interval must be at least 1 month")
		}
		subscription.BillingIntervalMonths = *update.BillingIntervalMonths
	}
	if update.Amount != nil {
		if *update.Amount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		subscription.Amount = *update.Amount
	}
	if update.Currency != nil {
		subscription.Currency = *update.Currency
	}
	if update.BillingDate != nil {
		subscription.BillingDate = dateutil.DateOnly(*update.BillingDate)
	}
	if update.NextRenewalDate != nil {
		normalized := dateutil.DateOnly(*update.NextRenewalDate)
		subscription.NextRenewalDate = &normalized
	}
	if update.Status != nil {
		subscription.Status = *update.Status
	}
	if update.Notes != nil {
		subscription.Notes = *update.Notes
	}

	subscription.PrepareForSave()

	if err := s.db.Save(subscription).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return subscription, nil
}

// DeleteSubscription deletes a subscription. Subscriptions referenced by
// expenses are protected and cannot be removed.
func (s *subscriptionService) DeleteSubscription(userID, subscriptionID string) error {
	subscription, err := s.GetSubscriptionByID(userID, subscriptionID)
	if err != nil {
		return err
	}

	var expCount int64
	if err := s.db.Model(&models.Expense{}).Where("subscription_id = ?", subscriptionID).Count(&expCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expCount > 0 {
		return apperrors.ErrSubscriptionInUse
	}

	if err := s.db.Delete(subscription).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
