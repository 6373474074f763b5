package utils_test

import (
	"testing"

	"github.com/jrsteele09/ttb-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestDigitsOnly(t *testing.T) {
	require.Equal(t, "5551234567", utils.DigitsOnly("(555) 123-4567"))
	require.Equal(t, "", utils.DigitsOnly("abc"))
	require.Equal(t, "12", utils.DigitsOnly("+1 2"))
}

func TestFormatPhone(t *testing.T) {
	t.Run("ten digits", func(t *testing.T) {
		require.Equal(t, "(555) 123-4567", utils.FormatPhone("5551234567"))
	})

	t.Run("already formatted", func(t *testing.T) {
		require.Equal(t, "(555) 123-4567", utils.FormatPhone("555.123.4567"))
	})

	t.Run("other lengths unchanged", func(t *testing.T) {
		require.Equal(t, "+44 20 7946 0958", utils.FormatPhone("+44 20 7946 0958"))
		require.Equal(t, "", utils.FormatPhone(""))
	})
}

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, utils.ToStringSlice([]any{"a", 1, "b", nil}))
}
