// Package keys derives the object store layout for alarm events. Every
// function here is pure so the write path and both search paths agree on
// the same keys without sharing state.
package keys

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
)

const (
	DateLayout = "2006-01-02"

	ExtEvent      = ".json"
	ExtVideo      = ".mp4"
	ExtScreenshot = ".png"

	ScreenshotRoot = "screenshots"
	RegistryKey    = "metadata/cameras.json"
)

// Capture stages that leave a screenshot behind.
const (
	StageLogin        = "login-screenshot"
	StagePageLoad     = "pageload-screenshot"
	StageAfterArchive = "afterarchivebuttonclick-screenshot"
	StageSignOut      = "signout-screenshot"
)

// Stages lists every screenshot stage in capture order.
var Stages = []string{StagePageLoad, StageLogin, StageAfterArchive, StageSignOut}

type Keys struct {
	Date   string
	Prefix string
	Event  string
	Video  string
}

// Derive returns the event and video keys for a trigger at the given epoch
// milliseconds. The two keys share Prefix and differ only in extension.
func Derive(loc *time.Location, t structs.Trigger, ts int64) Keys {
	date := DateFolder(EventTime(ts, loc))
	prefix := fmt.Sprintf("%s/%s_%s_%d", date, t.EventID, NormalizeDevice(t.Device), ts)

	return Keys{
		Date:   date,
		Prefix: prefix,
		Event:  prefix + ExtEvent,
		Video:  prefix + ExtVideo,
	}
}

// Screenshot returns the key for a capture stage screenshot.
func Screenshot(loc *time.Location, t structs.Trigger, ts int64, stage string) string {
	return ScreenshotFor(Derive(loc, t, ts), stage)
}

func ScreenshotFor(k Keys, stage string) string {
	return fmt.Sprintf("%s/%s_%s%s", ScreenshotRoot, k.Prefix, stage, ExtScreenshot)
}

// EventTime converts epoch milliseconds to a time in loc (UTC when nil).
func EventTime(ts int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts/1000, (ts%1000)*int64(time.Millisecond)).In(loc)
}

func DateFolder(t time.Time) string {
	return t.Format(DateLayout)
}

// EventPrefix is the listing prefix that finds every object for an event id
// on a given day.
func EventPrefix(date, eventID string) string {
	return fmt.Sprintf("%s/%s_", date, eventID)
}

// ParseTimestamp reads the trailing _{timestamp} from a key, ignoring its
// directory and extension.
func ParseTimestamp(key string) (int64, bool) {
	base := path.Base(key)
	base = strings.TrimSuffix(base, path.Ext(base))

	i := strings.LastIndex(base, "_")
	if i < 0 {
		return 0, false
	}

	ts, err := strconv.ParseInt(base[i+1:], 10, 64)
	if err != nil || ts <= 0 {
		return 0, false
	}

	return ts, true
}

// Filename returns the last path element of a key.
func Filename(key string) string {
	return path.Base(key)
}

// WithExt swaps the extension on a key.
func WithExt(key, ext string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ext
}

// NormalizeDevice returns the colon-stripped device id used in keys.
func NormalizeDevice(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), ":", "")
}
