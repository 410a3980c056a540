// Package search locates stored events by scanning date folders newest
// first. Lookups rely on the key layout alone and never read event bodies.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

const DefaultDays = 30

var log = logger.New("ns=search")

type Options struct {
	Days     int
	Location *time.Location
	Now      time.Time
}

type Result struct {
	Date      string
	Key       string
	Timestamp int64
}

// Latest returns the newest video in the window. Days are scanned one at a
// time from today backwards and the first day with any video wins.
func Latest(ctx context.Context, s structs.Storage, opts Options) (*Result, error) {
	log := log.At("latest").Start()

	for _, date := range dates(opts) {
		ks, err := s.ObjectList(ctx, date+"/")
		if err != nil {
			return nil, log.Error(errors.Wrapf(err, "list %s", date))
		}

		var best *Result

		for _, k := range ks {
			if !strings.HasSuffix(k, keys.ExtVideo) {
				continue
			}

			ts, ok := keys.ParseTimestamp(k)
			if !ok {
				continue
			}

			if best == nil || ts > best.Timestamp {
				best = &Result{Date: date, Key: k, Timestamp: ts}
			}
		}

		if best != nil {
			log.Successf("date=%s key=%q", date, best.Key)
			return best, nil
		}
	}

	log.Logf("result=none days=%d", days(opts))

	return nil, structs.NotFound("no videos found in the last %d days", days(opts))
}

// ByEventID returns the object for eventID with extension ext, searching
// each day in the window with a "{date}/{eventId}_" prefix.
func ByEventID(ctx context.Context, s structs.Storage, eventID, ext string, opts Options) (*Result, error) {
	log := log.At("by-event").Namespace("event=%q ext=%s", eventID, ext).Start()

	if eventID == "" {
		return nil, log.Error(structs.NotFound("event id required"))
	}

	for _, date := range dates(opts) {
		ks, err := s.ObjectList(ctx, keys.EventPrefix(date, eventID))
		if err != nil {
			return nil, log.Error(errors.Wrapf(err, "list %s", date))
		}

		var best *Result

		for _, k := range ks {
			if !strings.HasSuffix(k, ext) {
				continue
			}

			ts, _ := keys.ParseTimestamp(k)

			if best == nil || ts > best.Timestamp {
				best = &Result{Date: date, Key: k, Timestamp: ts}
			}
		}

		if best != nil {
			log.Successf("date=%s key=%q", date, best.Key)
			return best, nil
		}
	}

	log.Logf("result=none days=%d", days(opts))

	return nil, structs.NotFound("event not found: %s", eventID)
}

func dates(opts Options) []string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	ds := make([]string, 0, days(opts))

	for i := 0; i < days(opts); i++ {
		ds = append(ds, keys.DateFolder(now.AddDate(0, 0, -i)))
	}

	return ds
}

func days(opts Options) int {
	if opts.Days <= 0 {
		return DefaultDays
	}
	return opts.Days
}
