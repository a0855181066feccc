package models

// Category groups subscriptions and manual expenses for reporting.
// Names are unique per user.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;uniqueIndex:uniq_category_name_per_user" json:"user_id"`
	Name   string `gorm:"size:100;not null;uniqueIndex:uniq_category_name_per_user" json:"name"`

	// Relationships
	Subscriptions []Subscription `gorm:"foreignKey:CategoryID" json:"subscriptions,omitempty"`
	Expenses      []Expense      `gorm:"foreignKey:CategoryID" json:"expenses,omitempty"`
}
