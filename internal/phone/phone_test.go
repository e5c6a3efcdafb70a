package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, "919876543210", Normalize("+91 98765 43210"))
	require.Equal(t, "9876543210", Normalize("98-76-54-32-10"))
	require.Equal(t, "", Normalize("abc"))
}

func TestValidIndianMobile(t *testing.T) {
	require.True(t, ValidIndianMobile("9876543210"))
	require.False(t, ValidIndianMobile("98765432100"))
	require.False(t, ValidIndianMobile("987654321"))
	require.False(t, ValidIndianMobile("98765 43210"))
	require.False(t, ValidIndianMobile(""))
}

func TestMatches(t *testing.T) {
	require.True(t, Matches("+91 98765 43210", "9876543210"))
	require.True(t, Matches("919876543210", "9876543210"))
	require.True(t, Matches("9876543210", "9876543210"))
	require.False(t, Matches("123", "9876543210"))
	require.False(t, Matches("", "9876543210"))
	require.False(t, Matches("919876543210", ""))
}
