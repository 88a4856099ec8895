package core

import "time"

const (
	NotificationTrend         = "trend"
	NotificationDigestWeekly  = "digest_weekly"
	NotificationDigestMonthly = "digest_monthly"
)

const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Notification is a message raised by the reporting side (sales trend,
// periodic digests).
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
