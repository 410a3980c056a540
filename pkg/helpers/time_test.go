package helpers_test

import (
	"testing"
	"time"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	start := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	require.Equal(t, "", helpers.Duration(start, time.Time{}))
	require.Equal(t, "0s", helpers.Duration(start, start))
	require.Equal(t, "42s", helpers.Duration(start, start.Add(42*time.Second)))
	require.Equal(t, "3m12s", helpers.Duration(start, start.Add(3*time.Minute+12*time.Second)))
}

func TestMillis(t *testing.T) {
	require.Equal(t, int64(1700000000000), helpers.Millis(time.Unix(1700000000, 0)))
	require.Equal(t, int64(1700000000123), helpers.Millis(time.Unix(1700000000, 123456789)))
}
