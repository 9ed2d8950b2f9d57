package lifecycle

import "time"

const (
	OrderDateLayout = "2 January 2006"
	EstimateLayout  = "Monday, 2 January 2006"

	completionDays = 4
	deliveryDays   = 2
)

// Both estimates count calendar days in now's location; pass now already
// converted to the display zone.

// EstimatedCompletion is the cleaning finish date quoted on receipt.
func EstimatedCompletion(now time.Time) time.Time { return now.AddDate(0, 0, completionDays) }

// EstimatedDelivery is the doorstep date quoted when the parcel leaves.
func EstimatedDelivery(now time.Time) time.Time { return now.AddDate(0, 0, deliveryDays) }

func inZone(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		return t.In(loc)
	}
	return t
}

func formatIn(t time.Time, loc *time.Location, layout string) string {
	return inZone(t, loc).Format(layout)
}
