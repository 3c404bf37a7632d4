package entity

import "time"

// PassEventType names a ledger entry
type PassEventType string

const (
	PassEventPurchased        PassEventType = "purchased"
	PassEventRenewed          PassEventType = "renewed"
	PassEventDuplicateDeleted PassEventType = "duplicate_deleted"
	PassEventReminderSent     PassEventType = "reminder_sent"
	PassEventTurfUsed         PassEventType = "turf_used"
	PassEventDiningUsed       PassEventType = "dining_used"
)

// PassEvent is an audit entry for a change made to a pass document
type PassEvent struct {
	ID        uint
	PassID    string
	EventType PassEventType
	Email     string
	Phone     string
	Channel   NotificationChannel // set on reminder_sent entries
	Detail    string
	CreatedAt time.Time
}
