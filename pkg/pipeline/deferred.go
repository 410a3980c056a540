package pipeline

import (
	"context"
	"time"

	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/pkg/errors"
)

// HandleMessage processes one queue message body.
func (p *Pipeline) HandleMessage(ctx context.Context, body string) error {
	e, err := structs.ParseAlarmEvent([]byte(body))
	if err != nil {
		return err
	}

	return p.ProcessAlarmDeferred(ctx, e)
}

// ProcessAlarmDeferred enriches and stores an alarm, then captures its
// video. A *NoVideoError is returned when the viewer produced nothing; any
// other capture failure is logged and the alarm still counts as processed.
// Storage and queue failures are returned for redelivery.
func (p *Pipeline) ProcessAlarmDeferred(ctx context.Context, e *structs.AlarmEvent) error {
	t := e.Trigger()
	if t == nil {
		return e.Validate()
	}

	log := log.At("deferred").Namespace("event=%q device=%q", t.EventID, t.Device).Start()

	if p.Storage == nil {
		return log.Error(ErrStorageNotConfigured)
	}

	creds, err := p.credentials(ctx)
	if err != nil {
		return log.Error(err)
	}

	k := p.enrich(e, creds)

	if err := helpers.StoreJSON(ctx, p.Storage, k.Event, e); err != nil {
		return log.Error(errors.Wrapf(err, "store %s", k.Event))
	}

	log.Logf("stored=%q", k.Event)

	if e.Alarm.EventPath == "" {
		log.Successf("video=skipped reason=%q", "no event path")
		return nil
	}

	if p.Capturer == nil || creds == nil {
		log.Successf("video=skipped reason=%q", "capture unavailable")
		return nil
	}

	out := p.Capturer.Capture(ctx, capture.Request{
		URL:         e.Alarm.EventLocalLink,
		Credentials: creds,
		Coordinates: p.deviceCoordinates(t.Device),
		Screenshots: p.screenshotSink(k),
	})

	switch out.Kind {
	case capture.Succeeded:
		defer func() {
			if err := out.Cleanup(); err != nil {
				log.Logf("cleanup-error=%q", err)
			}
		}()

		t.OriginalFileName = out.FileName

		err := p.Storage.ObjectStore(ctx, k.Video, out.Video, structs.ObjectStoreOptions{
			ContentType: "video/mp4",
			Filename:    out.FileName,
		})
		if err != nil {
			return log.Error(errors.Wrapf(err, "store %s", k.Video))
		}

		// the video object already carries the filename, so a failed rewrite
		// only loses the hint in the event JSON
		if err := helpers.StoreJSON(ctx, p.Storage, k.Event, e); err != nil {
			log.Logf("rewrite=%q error=%q", k.Event, err)
		}

		log.Successf("video=%q file=%q", k.Video, out.FileName)

		return nil
	case capture.NoVideoDownloaded:
		return log.Error(&NoVideoError{EventID: t.EventID, Err: out.Err})
	default:
		log.Logf("video=failed state=%s error=%q", out.State, out.Err)
		log.Success()
		return nil
	}
}

// credentials resolves viewer credentials. Blank credentials disable capture
// for this alarm instead of failing it, so the message is not redelivered.
func (p *Pipeline) credentials(ctx context.Context) (*structs.Credentials, error) {
	if p.Credentials == nil {
		return nil, nil
	}

	c, err := p.Credentials.Get(ctx)
	if errors.Is(err, structs.ErrBlankCredentials) {
		log.At("credentials").Logf("state=blank capture=disabled")
		return nil, nil
	}

	return c, err
}

// enrich fills in the derived trigger fields and returns the event keys.
func (p *Pipeline) enrich(e *structs.AlarmEvent, creds *structs.Credentials) keys.Keys {
	t := e.Trigger()
	loc := p.location()

	k := keys.Derive(loc, *t, e.Timestamp)

	t.Date = keys.EventTime(e.Timestamp, loc).Format(time.RFC3339)
	t.DeviceName = p.deviceName(t.Device)
	t.EventKey = k.Event
	t.VideoKey = k.Video

	if link := creds.Link(e.Alarm.EventPath); link != "" {
		e.Alarm.EventLocalLink = link
	}

	return k
}

func (p *Pipeline) screenshotSink(k keys.Keys) capture.ScreenshotFunc {
	return func(ctx context.Context, stage string, png []byte) error {
		return p.Storage.ObjectStore(ctx, keys.ScreenshotFor(k, stage), png, structs.ObjectStoreOptions{ContentType: "image/png"})
	}
}
