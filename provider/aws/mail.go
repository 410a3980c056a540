package aws

import (
	"bytes"
	"context"
	"io"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

// MailSend renders the notification as a MIME message and sends it through
// SES so attachments survive.
func (p *Provider) MailSend(ctx context.Context, n structs.Notification) error {
	log := Logger.At("MailSend").Namespace("to=%d attachments=%d", len(n.To), len(n.Attachments)).Start()

	if p.MailFrom == "" {
		return log.Error(ErrNotConfigured("mail sender"))
	}

	if len(n.To) == 0 {
		return log.Error(errors.New("no recipients"))
	}

	raw, err := mimeMessage(p.MailFrom, n)
	if err != nil {
		return log.Error(err)
	}

	res, err := p.SES.SendRawEmailWithContext(ctx, &ses.SendRawEmailInput{
		Destinations: aws.StringSlice(n.To),
		RawMessage:   &ses.RawMessage{Data: raw},
		Source:       aws.String(p.MailFrom),
	})
	if err != nil {
		return log.Error(errors.WithStack(err))
	}

	log.Successf("id=%s", aws.StringValue(res.MessageId))

	return nil
}

func mimeMessage(from string, n structs.Notification) ([]byte, error) {
	m := gomail.NewMessage()

	m.SetHeader("From", from)
	m.SetHeader("To", n.To...)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/html", n.HTML)

	for _, a := range n.Attachments {
		a := a
		m.Attach(a.Name,
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(a.Data)
				return err
			}),
		)
	}

	var buf bytes.Buffer

	if _, err := m.WriteTo(&buf); err != nil {
		return nil, errors.WithStack(err)
	}

	return buf.Bytes(), nil
}
