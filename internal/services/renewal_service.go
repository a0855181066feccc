package services

import (
	"time"

	"gorm.io/gorm"

	"subtrack/internal/dateutil"
	apperrors "subtrack/internal/errors"
	"subtrack/internal/logger"
	"subtrack/internal/models"
)

// renewalService books renewal expenses for due subscriptions. It is
// designed to run once per day per deployment, triggered by cron or an
// administrative request.
type renewalService struct {
	db *gorm.DB
}

// NewRenewalService creates a new RenewalServicer.
func NewRenewalService(db *gorm.DB) RenewalServicer {
	return &renewalService{db: db}
}

// Run books at most one renewal expense per due subscription for the given
// run date and advances each renewed subscription's schedule. The date is a
// parameter, not the process clock, so runs are reproducible in tests.
//
// A subscription is due when it is active and its next renewal date is on or
// before today. Each candidate is processed in its own transaction: the
// duplicate guard (an expense for the same subscription, date, and
// subscription source already exists) turns a second run on the same day
// into a skip instead of a double booking, and a failure rolls back only
// the candidate at hand. Errors propagate and stop the batch; candidates
// committed before the failure stay committed.
//
// The new schedule anchors from today, not from the missed due date, so a
// late run books a single renewal rather than compounding missed periods.
func (s *renewalService) Run(today time.Time) (created, skipped int, err error) {
	today = dateutil.DateOnly(today)
	log := logger.Get()

	var due []models.Subscription
	if err := s.db.
		Where("status = ? AND next_renewal_date IS NOT NULL AND next_renewal_date <= ?",
			models.SubscriptionStatusActive, today).
		Order("next_renewal_date, name").
		Find(&due).Error; err != nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for i := range due {
		subscription := &due[i]
		if subscription.NextRenewalDate == nil {
			skipped++
			continue
		}

		log.Infow("subscription due",
			"subscription_id", subscription.ID,
			"name", subscription.Name,
			"due_date", subscription.NextRenewalDate.Format("2006-01-02"),
		)

		alreadyRenewed := false
		txErr := s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Expense{}).
				Where("subscription_id = ? AND transaction_date = ? AND source = ?",
					subscription.ID, today, models.ExpenseSourceSubscription).
				Count(&count).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				alreadyRenewed = true
				return nil
			}

			// The renewal books on the run date, not the billing anchor.
			expense := &models.Expense{
				UserID:          subscription.UserID,
				SubscriptionID:  &subscription.ID,
				TransactionDate: today,
			}
			expense.ApplySubscriptionDefaults(subscription)
			if err := expense.Validate(); err != nil {
				return err
			}
			if err := tx.Create(expense).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			interval := subscription.BillingIntervalMonths
			if interval < 1 {
				interval = 1
			}
			next := dateutil.AddMonths(today, interval)
			// Restrict the write to the schedule column so concurrent edits
			// to other fields are not clobbered.
			if err := tx.Model(subscription).Update("next_renewal_date", next).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
		if txErr != nil {
			return created, skipped, txErr
		}

		if alreadyRenewed {
			skipped++
			continue
		}
		created++
		log.Infow("renewal booked",
			"subscription_id", subscription.ID,
			"transaction_date", today.Format("2006-01-02"),
		)
	}

	log.Infow("renewal run complete", "created", created, "skipped", skipped)
	return created, skipped, nil
}
