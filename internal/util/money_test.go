package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatINR(t *testing.T) {
	require.Equal(t, "₹250", FormatINR(250))
	require.Equal(t, "₹99.5", FormatINR(99.5))
	require.Equal(t, "₹0", FormatINR(0))
	require.Equal(t, "₹1234.75", FormatINR(1234.75))
}
