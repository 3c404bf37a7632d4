package repository

import (
	"context"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

// Notifier delivers pass reminders over one channel
type Notifier interface {
	Channel() entity.NotificationChannel
	// CanNotify reports whether the reminder carries the contact detail this channel needs
	CanNotify(reminder *entity.PassReminder) bool
	Send(ctx context.Context, reminder *entity.PassReminder) error
}
