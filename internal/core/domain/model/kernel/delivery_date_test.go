package kernel_test

import (
	"testing"
	"time"

	"packing/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeliveryDate(t *testing.T) {
	t.Run("should normalize to day start in UTC", func(t *testing.T) {
		instant := time.Date(2025, 6, 1, 14, 30, 45, 123, time.UTC)

		date, err := kernel.NewDeliveryDate(instant)

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), date.DayStart())
		assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), date.DayEnd())
		assert.NoError(t, date.Validate())
	})

	t.Run("should map two instants of the same day to equal dates", func(t *testing.T) {
		morning, err := kernel.NewDeliveryDate(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		evening, err := kernel.NewDeliveryDate(time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC))
		require.NoError(t, err)

		assert.True(t, morning.IsEqual(evening))
	})

	t.Run("should distinguish different days", func(t *testing.T) {
		first, err := kernel.NewDeliveryDate(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		second, err := kernel.NewDeliveryDate(time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.False(t, first.IsEqual(second))
	})

	t.Run("should convert non-UTC instants before normalizing", func(t *testing.T) {
		zone := time.FixedZone("UTC+5", 5*60*60)
		// 02:00 on June 2nd in UTC+5 is still June 1st in UTC.
		instant := time.Date(2025, 6, 2, 2, 0, 0, 0, zone)

		date, err := kernel.NewDeliveryDate(instant)

		require.NoError(t, err)
		assert.Equal(t, "2025-06-01", date.String())
	})

	t.Run("should reject a zero time", func(t *testing.T) {
		_, err := kernel.NewDeliveryDate(time.Time{})

		require.Error(t, err)
	})
}

func TestDeliveryDateFromString(t *testing.T) {
	t.Run("should parse a valid date", func(t *testing.T) {
		date, err := kernel.DeliveryDateFromString("2025-06-01")

		require.NoError(t, err)
		assert.Equal(t, "2025-06-01", date.String())
	})

	t.Run("should reject an invalid date", func(t *testing.T) {
		_, err := kernel.DeliveryDateFromString("June 1st 2025")

		require.Error(t, err)
	})
}

func TestDeliveryDate_Contains(t *testing.T) {
	date, err := kernel.NewDeliveryDate(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.True(t, date.Contains(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, date.Contains(time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)))
	assert.False(t, date.Contains(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, date.Contains(time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)))
}

func TestDeliveryDate_Validate(t *testing.T) {
	t.Run("zero value fails validation", func(t *testing.T) {
		var date kernel.DeliveryDate

		err := date.Validate()

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrDeliveryDateIsNotConstructed)
	})
}
