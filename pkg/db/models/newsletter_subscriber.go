package models

import "time"

// NewsletterSubscriber is an opted-in email address.
type NewsletterSubscriber struct {
	Email        string    `gorm:"column:email;primaryKey" json:"email"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;autoCreateTime" json:"subscribed_at"`
}
