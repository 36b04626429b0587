package kernel

import (
	"time"

	"packing/internal/pkg/errs"
	"packing/internal/pkg/guard"
)

// ErrDeliveryDateIsNotConstructed is returned when attempting to use an
// improperly initialized DeliveryDate. Delivery dates must be created via
// NewDeliveryDate to guarantee day normalization.
var ErrDeliveryDateIsNotConstructed = errs.NewValueIsRequiredError(
	"delivery date must be created via NewDeliveryDate constructor")

// DeliveryDate is a value object representing the day a batch of orders is
// scheduled for delivery. Sessions are scoped to a delivery date at day
// granularity: two instants on the same calendar day (UTC) map to the same
// DeliveryDate.
//
// The value is normalized to the start of the day in UTC, and the day window
// [DayStart, DayEnd) is derived from it. The zero value is invalid and fails
// validation.
//
// Example:
//
//	date, err := kernel.NewDeliveryDate(time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC))
//	if err != nil {
//	    // handle validation error
//	}
//	fmt.Println(date) // Output: 2025-06-01
type DeliveryDate struct { //nolint:recvcheck //using for validation
	day   time.Time
	guard guard.ConstructorGuard
}

// NewDeliveryDate creates a DeliveryDate from an arbitrary instant.
// The instant is converted to UTC and truncated to the start of its calendar
// day. A zero time is rejected as a required value.
func NewDeliveryDate(t time.Time) (DeliveryDate, error) {
	if t.IsZero() {
		return DeliveryDate{}, errs.NewValueIsRequiredError("deliveryDate")
	}

	utc := t.UTC()
	return DeliveryDate{
		day:   time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC),
		guard: guard.NewConstructorGuard(),
	}, nil
}

// DeliveryDateFromString parses a DeliveryDate from its "2006-01-02" form.
func DeliveryDateFromString(s string) (DeliveryDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return DeliveryDate{}, errs.NewValueIsInvalidErrorWithCause("deliveryDate", err)
	}
	return NewDeliveryDate(t)
}

// DayStart returns the inclusive lower bound of the delivery day window.
func (d DeliveryDate) DayStart() time.Time {
	return d.day
}

// DayEnd returns the exclusive upper bound of the delivery day window.
func (d DeliveryDate) DayEnd() time.Time {
	return d.day.Add(24 * time.Hour)
}

// Contains reports whether the given instant falls inside the day window.
func (d DeliveryDate) Contains(t time.Time) bool {
	utc := t.UTC()
	return !utc.Before(d.DayStart()) && utc.Before(d.DayEnd())
}

// IsEqual compares two delivery dates by their normalized day.
func (d DeliveryDate) IsEqual(other DeliveryDate) bool {
	return d.day.Equal(other.day)
}

// String returns the date in "2006-01-02" form.
func (d DeliveryDate) String() string {
	return d.day.Format(time.DateOnly)
}

// Validate checks that the DeliveryDate was created via its constructor.
func (d DeliveryDate) Validate() error {
	return d.guard.Validate(ErrDeliveryDateIsNotConstructed)
}
