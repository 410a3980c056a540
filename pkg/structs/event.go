package structs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// AlarmEvent is the webhook payload delivered by the gateway's alarm manager.
type AlarmEvent struct {
	Alarm     *Alarm `json:"alarm" validate:"required"`
	Timestamp int64  `json:"timestamp" validate:"gt=0"`
}

type Alarm struct {
	Name           string      `json:"name"`
	Sources        []Source    `json:"sources,omitempty"`
	Conditions     []Condition `json:"conditions,omitempty"`
	Triggers       []Trigger   `json:"triggers" validate:"required,min=1"`
	EventPath      string      `json:"eventPath,omitempty"`
	EventLocalLink string      `json:"eventLocalLink,omitempty"`
}

type Source struct {
	Device string `json:"device"`
	Type   string `json:"type"`
}

type Condition struct {
	Condition struct {
		Type   string `json:"type"`
		Source string `json:"source"`
	} `json:"condition"`
}

// Trigger is a single detection. The fields after EventID are filled in
// during processing and never arrive on the wire.
type Trigger struct {
	Key     string `json:"key"`
	Device  string `json:"device"`
	EventID string `json:"eventId"`

	DeviceName       string `json:"deviceName,omitempty"`
	Date             string `json:"date,omitempty"`
	EventKey         string `json:"eventKey,omitempty"`
	VideoKey         string `json:"videoKey,omitempty"`
	OriginalFileName string `json:"originalFileName,omitempty"`
	Thumbnail        string `json:"thumbnail,omitempty"`
}

// ValidationError is returned when a payload does not have the shape of an
// alarm event.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParseAlarmEvent decodes a webhook or queue body. It does not validate.
func ParseAlarmEvent(data []byte) (*AlarmEvent, error) {
	var e AlarmEvent

	if err := json.Unmarshal(data, &e); err != nil {
		return nil, ValidationError{Reason: fmt.Sprintf("invalid json: %s", err)}
	}

	return &e, nil
}

// Validate checks the invariants every alarm must satisfy before anything is
// enqueued or written.
func (e *AlarmEvent) Validate() error {
	if e == nil {
		return ValidationError{Field: "alarm", Reason: "alarm object is required"}
	}

	if e.Alarm != nil && len(e.Alarm.Triggers) == 0 {
		return ValidationError{Field: "alarm.triggers", Reason: "at least one trigger is required"}
	}

	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationErrorFrom(verrs[0])
		}
		return errors.WithStack(err)
	}

	return nil
}

// Trigger returns the trigger that drives processing. Only the first trigger
// is processed.
func (e *AlarmEvent) Trigger() *Trigger {
	if e == nil || e.Alarm == nil || len(e.Alarm.Triggers) == 0 {
		return nil
	}
	return &e.Alarm.Triggers[0]
}

func (e *AlarmEvent) EventID() string {
	if t := e.Trigger(); t != nil {
		return t.EventID
	}
	return ""
}

func (e *AlarmEvent) Device() string {
	if t := e.Trigger(); t != nil {
		return t.Device
	}
	return ""
}

// Sanitized returns a copy safe for public views: device sources are dropped.
func (e *AlarmEvent) Sanitized() *AlarmEvent {
	if e == nil {
		return nil
	}

	c := *e

	if e.Alarm != nil {
		a := *e.Alarm
		a.Sources = nil
		a.Triggers = append([]Trigger{}, e.Alarm.Triggers...)
		c.Alarm = &a
	}

	return &c
}

func validationErrorFrom(fe validator.FieldError) ValidationError {
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "alarmevent.")

	switch fe.Tag() {
	case "required":
		return ValidationError{Field: field, Reason: "is required"}
	case "min":
		return ValidationError{Field: field, Reason: fmt.Sprintf("must have at least %s item", fe.Param())}
	case "gt":
		return ValidationError{Field: field, Reason: fmt.Sprintf("must be greater than %s", fe.Param())}
	default:
		return ValidationError{Field: field, Reason: fmt.Sprintf("failed %s validation", fe.Tag())}
	}
}
