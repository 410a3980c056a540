package helpers

import (
	"fmt"
	"time"
)

var (
	PrintableTime = "2006-01-02 15:04:05"
)

// Duration formats the whole minutes and seconds between start and end.
func Duration(start, end time.Time) string {
	d := end.Sub(start)

	if end.IsZero() {
		return ""
	}

	total := int64(d.Seconds())
	sec := total % 60
	min := total / 60

	dur := fmt.Sprintf("%ds", sec)

	if min >= 1 {
		dur = fmt.Sprintf("%dm", min) + dur
	}

	return dur
}

// Millis returns t as epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}
