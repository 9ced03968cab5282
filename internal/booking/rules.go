package booking

import (
	"fmt"
	"time"

	"hotelbook/internal/models"
)

// Group names a selectable set of field rules. The HTTP workflow runs all
// groups together, but each group can be evaluated on its own.
type Group string

const (
	GroupIds            Group = "Ids"
	GroupDates          Group = "Dates"
	GroupBookingPeriods Group = "BookingPeriods"
)

// AllGroups lists every rule group in evaluation order.
var AllGroups = []Group{GroupIds, GroupDates, GroupBookingPeriods}

const (
	// HorizonDays bounds how far ahead a booking may start or end: dates must
	// fall strictly after today and no later than today+HorizonDays.
	HorizonDays = 30
	// MaxStayDays is the longest allowed stay in whole days.
	MaxStayDays = 3
)

const (
	msgNotNullPositive = "%s must be not null and positive."
	msgBiggerThanZero  = "%s must be not null and bigger than 0."
	msgNotNull         = "%s must not be null."
	msgDatesEqual      = "%s is equal to %s."
	msgOutsidePeriod   = "%s is outside the allowed period."
	msgStayTooLong     = "Booking period is bigger than 3 days"
)

// fieldOrder fixes the order in which Messages flattens violations.
var fieldOrder = []string{"Id", "UserId", "RoomNumber", "StartDate", "EndDate"}

// Violations maps a field name to the messages of its failed rules. A field
// can collect more than one message when several groups are evaluated.
type Violations map[string][]string

func (v Violations) add(field, msg string) {
	v[field] = append(v[field], msg)
}

// Valid reports whether no rule failed.
func (v Violations) Valid() bool { return len(v) == 0 }

// Messages flattens all violation messages in stable field order.
func (v Violations) Messages() []string {
	var out []string
	for _, field := range fieldOrder {
		out = append(out, v[field]...)
	}
	return out
}

// Validate checks the candidate's fields against the selected rule groups.
// Evaluation is fail-fast per field inside a group: once a field fails, its
// remaining rules in that group are skipped. Groups are independent, so a
// field rejected in one group is still checked by the next. "today" is an
// explicit input; it is truncated to day precision before any comparison.
// With no groups given, all groups run.
func Validate(candidate models.Booking, today time.Time, groups ...Group) Violations {
	if len(groups) == 0 {
		groups = AllGroups
	}

	day := models.Day(today)
	v := make(Violations)
	for _, g := range groups {
		switch g {
		case GroupIds:
			validateIds(candidate, v)
		case GroupDates:
			validateDates(candidate, v)
		case GroupBookingPeriods:
			validatePeriods(candidate, day, v)
		}
	}
	return v
}

func validateIds(b models.Booking, v Violations) {
	if b.ID < 0 {
		v.add("Id", fmt.Sprintf(msgNotNullPositive, "Id"))
	}
	if b.UserID <= 0 {
		v.add("UserId", fmt.Sprintf(msgBiggerThanZero, "UserId"))
	}
	if b.RoomNumber <= 0 {
		v.add("RoomNumber", fmt.Sprintf(msgBiggerThanZero, "RoomNumber"))
	}
}

func validateDates(b models.Booking, v Violations) {
	switch {
	case b.StartDate.IsZero():
		v.add("StartDate", fmt.Sprintf(msgNotNull, "StartDate"))
	case models.Day(b.StartDate).Equal(models.Day(b.EndDate)):
		v.add("StartDate", fmt.Sprintf(msgDatesEqual, "StartDate", "EndDate"))
	}
	if b.EndDate.IsZero() {
		v.add("EndDate", fmt.Sprintf(msgNotNull, "EndDate"))
	}
}

func validatePeriods(b models.Booking, today time.Time, v Violations) {
	horizon := today.AddDate(0, 0, HorizonDays)
	start := models.Day(b.StartDate)
	end := models.Day(b.EndDate)

	switch {
	case !start.After(today) || start.After(horizon):
		v.add("StartDate", fmt.Sprintf(msgOutsidePeriod, "StartDate"))
	case models.DaysBetween(start, end) > MaxStayDays:
		// Stay length is the StartDate chain's second rule, skipped when the
		// window rule already rejected the field.
		v.add("StartDate", msgStayTooLong)
	}

	if !end.After(today) || end.After(horizon) {
		v.add("EndDate", fmt.Sprintf(msgOutsidePeriod, "EndDate"))
	}
}
