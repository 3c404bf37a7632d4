package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/domain/entity"
)

// ReminderDateLayout is how expiry dates appear in reminders
const ReminderDateLayout = "02 Jan 2006"

// RenderPassReminder fills subject and text of an expiry reminder for pass
func RenderPassReminder(pass *entity.PassRecord, remainingDays int) *entity.PassReminder {
	name := strings.TrimSpace(pass.Name)
	if name == "" {
		name = "there"
	}

	var when string
	switch {
	case remainingDays <= 0:
		when = "today"
	case remainingDays == 1:
		when = "tomorrow"
	default:
		when = fmt.Sprintf("in %d days", remainingDays)
	}

	expiry := pass.ExpiryDate.In(time.UTC).Format(ReminderDateLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Your Ticpin Pass expires %s (%s).\n", when, expiry)
	if left := pass.RemainingTurfBookings(); left > 0 {
		fmt.Fprintf(&b, "You still have %d free turf booking(s) to use.\n", left)
	}
	if left := pass.RemainingDiningVouchers(); left > 0 {
		fmt.Fprintf(&b, "You still have %d dining voucher(s) to use.\n", left)
	}
	fmt.Fprintf(&b, "Renew now to keep your %d%% discount on every booking.\n\nTeam Ticpin", pass.DiscountPercentage)

	return &entity.PassReminder{
		PassID:        pass.ID,
		Email:         pass.Email,
		Phone:         pass.Phone,
		Name:          pass.Name,
		ExpiryDate:    pass.ExpiryDate,
		RemainingDays: remainingDays,
		Subject:       fmt.Sprintf("Your Ticpin Pass expires %s", when),
		Text:          b.String(),
	}
}
