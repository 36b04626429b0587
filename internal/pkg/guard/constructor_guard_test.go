package guard_test

import (
	"errors"
	"testing"

	"packing/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_given_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		wantErr := errors.New("session not constructed")

		err := g.Validate(wantErr)

		require.Error(t, err)
		assert.Equal(t, wantErr, err)
	})

	t.Run("zero_value_guard_falls_back_to_default_error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Contains(t, guard.ErrDefaultConstructorGuard.Error(), "constructor")
	})
}

// TestConstructorGuard_EnforcesConstructorUsage shows the intended pattern:
// a value object embedding the guard rejects zero-value instances.
func TestConstructorGuard_EnforcesConstructorUsage(t *testing.T) {
	type barcode struct {
		value string
		guard guard.ConstructorGuard
	}

	errBarcodeNotConstructed := errors.New("barcode must be created via newBarcode")

	newBarcode := func(value string) (barcode, error) {
		if value == "" {
			return barcode{}, errors.New("value is required")
		}
		return barcode{value: value, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_value_validates", func(t *testing.T) {
		b, err := newBarcode("4006381333931")

		require.NoError(t, err)
		require.NoError(t, b.guard.Validate(errBarcodeNotConstructed))
		assert.Equal(t, "4006381333931", b.value)
	})

	t.Run("zero_value_is_rejected", func(t *testing.T) {
		var b barcode

		err := b.guard.Validate(errBarcodeNotConstructed)

		require.Error(t, err)
		assert.Equal(t, errBarcodeNotConstructed, err)
	})
}

func TestConstructorGuard_CopiesKeepValidity(t *testing.T) {
	g := guard.NewConstructorGuard()
	copied := g

	require.NoError(t, g.Validate(errors.New("not constructed")))
	require.NoError(t, copied.Validate(errors.New("not constructed")))
}

func TestConstructorGuard_ConcurrentValidation(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	done := make(chan struct{})
	for range 50 {
		go func() {
			for range 1000 {
				assert.NoError(t, g.Validate(validationError))
			}
			done <- struct{}{}
		}()
	}

	for range 50 {
		<-done
	}
}
