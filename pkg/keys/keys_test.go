package keys_test

import (
	"testing"
	"time"

	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/stretchr/testify/require"
)

var trigger = structs.Trigger{Key: "motion", Device: "AABBCCDDEEFF", EventID: "evt123"}

func TestDerive(t *testing.T) {
	k := keys.Derive(time.UTC, trigger, 1700000000000)

	require.Equal(t, "2023-11-14", k.Date)
	require.Equal(t, "2023-11-14/evt123_AABBCCDDEEFF_1700000000000", k.Prefix)
	require.Equal(t, "2023-11-14/evt123_AABBCCDDEEFF_1700000000000.json", k.Event)
	require.Equal(t, "2023-11-14/evt123_AABBCCDDEEFF_1700000000000.mp4", k.Video)
}

func TestDeriveDeterministic(t *testing.T) {
	for _, ts := range []int64{1, 1700000000000, 1700000000999, 1893456000000} {
		a := keys.Derive(time.UTC, trigger, ts)
		b := keys.Derive(time.UTC, trigger, ts)

		require.Equal(t, a, b)
		require.Equal(t, keys.WithExt(a.Event, ""), keys.WithExt(a.Video, ""))
		require.Equal(t, a.Prefix+keys.ExtEvent, a.Event)
		require.Equal(t, a.Prefix+keys.ExtVideo, a.Video)
	}
}

func TestDeriveNormalizesDevice(t *testing.T) {
	a := keys.Derive(time.UTC, structs.Trigger{Device: "AA:BB:CC:DD:EE:FF", EventID: "evt123"}, 1700000000000)
	b := keys.Derive(time.UTC, trigger, 1700000000000)

	require.Equal(t, b.Event, a.Event)

	lower := keys.Derive(time.UTC, structs.Trigger{Device: "aa:bb:cc:dd:ee:ff", EventID: "evt123"}, 1700000000000)
	require.Equal(t, "2023-11-14/evt123_aabbccddeeff_1700000000000.json", lower.Event)

	require.Equal(t, "AA-BB", keys.NormalizeDevice(" AA-BB "))
}

func TestDeriveLocation(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*60*60)

	k := keys.Derive(loc, trigger, 1700000000000)

	require.Equal(t, "2023-11-14", k.Date)

	k = keys.Derive(loc, trigger, 1699930000000)

	require.Equal(t, "2023-11-13", k.Date)
}

func TestScreenshot(t *testing.T) {
	key := keys.Screenshot(time.UTC, trigger, 1700000000000, keys.StageLogin)

	require.Equal(t, "screenshots/2023-11-14/evt123_AABBCCDDEEFF_1700000000000_login-screenshot.png", key)
}

func TestEventPrefix(t *testing.T) {
	require.Equal(t, "2023-11-14/evt123_", keys.EventPrefix("2023-11-14", "evt123"))
}

func TestParseTimestamp(t *testing.T) {
	ts, ok := keys.ParseTimestamp("2023-11-14/evt123_AABBCCDDEEFF_1700000000000.mp4")
	require.True(t, ok)
	require.Equal(t, int64(1700000000000), ts)

	_, ok = keys.ParseTimestamp("2023-11-14/readme.txt")
	require.False(t, ok)

	_, ok = keys.ParseTimestamp("2023-11-14/evt_dev_abc.mp4")
	require.False(t, ok)
}
