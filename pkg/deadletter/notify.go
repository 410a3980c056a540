package deadletter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/keys"
	"github.com/alarmvault/alarmvault/pkg/options"
	"github.com/alarmvault/alarmvault/pkg/structs"
	humanize "github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

var body = template.Must(template.New("notification").Parse(`<html>
<body>
<h2>Alarm video capture failed</h2>
<p>No video was downloaded for this alarm. The original message is on the dead-letter queue and can be replayed once the recording is available.</p>
<table>
<tr><td><b>Event</b></td><td>{{.EventID}}</td></tr>
<tr><td><b>Alarm</b></td><td>{{.Alarm}}</td></tr>
<tr><td><b>Trigger</b></td><td>{{.Trigger}}</td></tr>
<tr><td><b>Device</b></td><td>{{.Device}}</td></tr>
<tr><td><b>Occurred</b></td><td>{{.Occurred}}</td></tr>
{{if .Waited}}<tr><td><b>Waited</b></td><td>{{.Waited}}</td></tr>{{end}}
<tr><td><b>Reason</b></td><td>{{.Reason}}</td></tr>
<tr><td><b>Recorded</b></td><td>{{.RetryAttempt}}</td></tr>
<tr><td><b>Dead-letter message</b></td><td>{{.MessageID}}</td></tr>
{{if .Link}}<tr><td><b>Viewer</b></td><td><a href="{{.Link}}">{{.Link}}</a></td></tr>{{end}}
</table>
<h3>Attachments</h3>
<ul>
{{range .Attachments}}<li>{{.Name}} ({{.Size}})</li>
{{else}}<li>none</li>
{{end}}</ul>
</body>
</html>
`))

type attachmentView struct {
	Name string
	Size string
}

type bodyView struct {
	Alarm        string
	Attachments  []attachmentView
	Device       string
	EventID      string
	Link         string
	MessageID    string
	Occurred     string
	Reason       string
	RetryAttempt string
	Trigger      string
	Waited       string
}

// notify mails the diagnostic bundle. No recipients is a silent no-op.
func (h *Handler) notify(ctx context.Context, e *structs.AlarmEvent, env structs.DeadLetterEnvelope, messageID string) error {
	if len(h.Options.NotifyTo) == 0 || h.Mailer == nil {
		return nil
	}

	n, err := h.bundle(ctx, e, env, messageID)
	if err != nil {
		return err
	}

	return h.Mailer.MailSend(ctx, *n)
}

func (h *Handler) bundle(ctx context.Context, e *structs.AlarmEvent, env structs.DeadLetterEnvelope, messageID string) (*structs.Notification, error) {
	as := []structs.Attachment{
		{Name: "recent-logs.txt", ContentType: "text/plain", Data: []byte(h.recentLogs(ctx))},
	}

	as = append(as, h.screenshots(ctx, e)...)

	as = append(as, structs.Attachment{
		Name:        "event.json",
		ContentType: "application/json",
		Data:        helpers.PrettyJSON([]byte(env.Body)),
	})

	v := bodyView{
		EventID:      e.EventID(),
		MessageID:    messageID,
		Reason:       env.FailureReason,
		RetryAttempt: env.RetryAttempt,
	}

	if e.Timestamp > 0 {
		occurred := keys.EventTime(e.Timestamp, h.location())
		v.Occurred = occurred.Format(helpers.PrintableTime + " MST")
		v.Waited = helpers.Duration(occurred, h.now())
	}

	if e.Alarm != nil {
		v.Alarm = e.Alarm.Name
		v.Link = e.Alarm.EventLocalLink
	}

	if t := e.Trigger(); t != nil {
		v.Trigger = t.Key
		v.Device = helpers.CoalesceString(t.DeviceName, t.Device)
	}

	for _, a := range as {
		v.Attachments = append(v.Attachments, attachmentView{Name: a.Name, Size: humanize.Bytes(uint64(len(a.Data)))})
	}

	var buf bytes.Buffer

	if err := body.Execute(&buf, v); err != nil {
		return nil, errors.WithStack(err)
	}

	return &structs.Notification{
		To:          h.Options.NotifyTo,
		Subject:     fmt.Sprintf("Alarm video capture failed: %s (%s)", v.EventID, v.Device),
		HTML:        buf.String(),
		Attachments: as,
	}, nil
}

// recentLogs returns recent log lines or a placeholder explaining why there
// are none.
func (h *Handler) recentLogs(ctx context.Context) string {
	if h.Logs == nil {
		return "recent logs unavailable: no log source configured\n"
	}

	lines, err := h.Logs.LogsRecent(ctx, structs.LogsOptions{
		Limit: options.Int(helpers.CoalesceInt(h.Options.LogLimit, DefaultLogLimit)),
		Since: options.Duration(helpers.CoalesceDuration(h.Options.LogWindow, DefaultLogWindow)),
	})
	if err != nil {
		log.At("logs").Logf("state=unavailable error=%q", err)
		return fmt.Sprintf("recent logs unavailable: %s\n", err)
	}

	if len(lines) == 0 {
		return "no log lines in window\n"
	}

	return strings.Join(lines, "\n") + "\n"
}

// screenshots fetches each stage screenshot independently. Missing or
// unreadable screenshots are left out.
func (h *Handler) screenshots(ctx context.Context, e *structs.AlarmEvent) []structs.Attachment {
	t := e.Trigger()
	if h.Storage == nil || t == nil {
		return nil
	}

	as := []structs.Attachment{}

	for _, stage := range keys.Stages {
		key := keys.Screenshot(h.location(), *t, e.Timestamp, stage)

		data, err := h.Storage.ObjectFetch(ctx, key)
		if err != nil {
			if !structs.ErrorNotFound(err) {
				log.At("screenshots").Logf("key=%q error=%q", key, err)
			}
			continue
		}

		as = append(as, structs.Attachment{Name: stage + keys.ExtScreenshot, ContentType: "image/png", Data: data})
	}

	return as
}
