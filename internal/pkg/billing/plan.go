package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/ManuelReschke/BaanBox/app/models"
)

// NormalizeCycle maps input to weekly or monthly. Anything unknown bills weekly.
func NormalizeCycle(cycle string) string {
	switch strings.ToLower(strings.TrimSpace(cycle)) {
	case models.BILLING_CYCLE_MONTHLY, "month":
		return models.BILLING_CYCLE_MONTHLY
	default:
		return models.BILLING_CYCLE_WEEKLY
	}
}

// StartDate is the first delivery day of a new subscription: tomorrow, at
// midnight in now's location.
func StartDate(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// NextBillingDate adds one cycle to start. Monthly uses calendar months, so
// Jan 31 rolls over into March like time.AddDate does.
func NextBillingDate(start time.Time, cycle string) time.Time {
	if NormalizeCycle(cycle) == models.BILLING_CYCLE_MONTHLY {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// TransactionID builds TXN-<yyyymmddhhmmss>-<first 8 chars of the subscription id>.
func TransactionID(now time.Time, subscriptionID string) string {
	short := subscriptionID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("TXN-%s-%s", now.Format("20060102150405"), strings.ToUpper(short))
}

// UpcomingWeekendDates lists the next n Saturdays and Sundays after now.
func UpcomingWeekendDates(now time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	day := StartDate(now)
	for len(dates) < n {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

func isBillableStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SUBSCRIPTION_ACTIVE, models.SUBSCRIPTION_PENDING_PAYMENT:
		return true
	default:
		return false
	}
}

// canTransition lists the status changes a customer may trigger.
func canTransition(from, to string) bool {
	switch to {
	case models.SUBSCRIPTION_PAUSED:
		return from == models.SUBSCRIPTION_ACTIVE
	case models.SUBSCRIPTION_ACTIVE:
		return from == models.SUBSCRIPTION_PAUSED
	case models.SUBSCRIPTION_CANCELLED:
		return from == models.SUBSCRIPTION_ACTIVE || from == models.SUBSCRIPTION_PAUSED || from == models.SUBSCRIPTION_PENDING_PAYMENT
	default:
		return false
	}
}
