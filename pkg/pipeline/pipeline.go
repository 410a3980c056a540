// Package pipeline validates alarm events, defers them through the delay
// queue and, once the delay has passed, stores the event and its video.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/credentials"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/convox/logger"
	"github.com/pkg/errors"
)

const DefaultDelay = 120 * time.Second

var (
	log = logger.New("ns=pipeline")

	ErrQueueNotConfigured   = structs.NotConfigured("queue is not configured")
	ErrStorageNotConfigured = structs.NotConfigured("storage is not configured")
)

// Capturer exports the video for an alarm.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) capture.Outcome
}

// NoVideoError is returned by ProcessAlarmDeferred when the viewer produced
// no video in time. It is the only capture failure that leaves the pipeline.
type NoVideoError struct {
	EventID string
	Err     error
}

func (e *NoVideoError) Error() string {
	return fmt.Sprintf("event %s: %s", e.EventID, e.Err)
}

func (e *NoVideoError) Unwrap() error {
	return e.Err
}

// IsNoVideo reports whether err carries a NoVideoError.
func IsNoVideo(err error) bool {
	var nv *NoVideoError
	return errors.As(err, &nv)
}

type Options struct {
	Delay    time.Duration
	Location *time.Location
	Now      func() time.Time
}

type Pipeline struct {
	Capturer    Capturer
	Credentials *credentials.Cache
	Queue       structs.Queue
	Registry    structs.DeviceRegistry
	Storage     structs.Storage

	Options Options
}

func (p *Pipeline) delay() time.Duration {
	if p.Options.Delay <= 0 {
		return DefaultDelay
	}
	return p.Options.Delay
}

func (p *Pipeline) location() *time.Location {
	if p.Options.Location == nil {
		return time.UTC
	}
	return p.Options.Location
}

func (p *Pipeline) now() time.Time {
	if p.Options.Now == nil {
		return time.Now().UTC()
	}
	return p.Options.Now()
}

func (p *Pipeline) deviceName(id string) string {
	if p.Registry == nil {
		return id
	}
	return p.Registry.DeviceName(id)
}

func (p *Pipeline) deviceCoordinates(id string) structs.Coordinates {
	if p.Registry == nil {
		return structs.Coordinates{}
	}
	return p.Registry.DeviceCoordinates(id)
}
