package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return non-empty consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
}

func TestExported(t *testing.T) {
	t.Parallel()

	require.Equal(t, DevLabel, Exported(true))
	require.Equal(t, Short(), Exported(false))
}

func TestIsDev(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "empty", value: "", expected: true},
		{name: "upper", value: "DEV", expected: true},
		{name: "lower", value: "dev", expected: true},
		{name: "release", value: "1.2.3", expected: false},
		{name: "garbage", value: "development", expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, IsDev(tc.value))
		})
	}
}

func TestAccepted(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		value    string
		expected bool
	}{
		{name: "semver", value: "1.0.0", expected: true},
		{name: "long components", value: "12.34.56", expected: true},
		{name: "dev label", value: "DEV", expected: true},
		{name: "lowercase dev", value: "dev", expected: false},
		{name: "two components", value: "1.0", expected: false},
		{name: "prefixed", value: "v1.0.0", expected: false},
		{name: "trailing text", value: "1.0.0-rc1", expected: false},
		{name: "empty", value: "", expected: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, Accepted(tc.value))
		})
	}
}
