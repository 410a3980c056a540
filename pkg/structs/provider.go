package structs

import (
	"context"
	"time"
)

// Storage is the object store used for event JSON, videos, screenshots and
// metadata.
type Storage interface {
	ObjectExists(ctx context.Context, key string) (bool, error)
	ObjectFetch(ctx context.Context, key string) ([]byte, error)
	ObjectHead(ctx context.Context, key string) (*Object, error)
	ObjectList(ctx context.Context, prefix string) ([]string, error)
	ObjectPresign(ctx context.Context, key string, opts ObjectPresignOptions) (string, error)
	ObjectStore(ctx context.Context, key string, data []byte, opts ObjectStoreOptions) error
}

// Queue is the delay queue that decouples webhook acknowledgment from
// processing, plus the application dead-letter queue.
type Queue interface {
	QueueSend(ctx context.Context, body string, opts QueueSendOptions) (string, error)
	QueueReceive(ctx context.Context, max int) ([]QueueMessage, error)
	QueueDelete(ctx context.Context, m QueueMessage) error
	QueueDepth(ctx context.Context, queue string) (int64, error)

	DeadLetterSend(ctx context.Context, e DeadLetterEnvelope) (string, error)
}

type Secrets interface {
	SecretGet(ctx context.Context, id string) (*Credentials, error)
}

type Mailer interface {
	MailSend(ctx context.Context, n Notification) error
}

type LogReader interface {
	LogsRecent(ctx context.Context, opts LogsOptions) ([]string, error)
}

// DeviceRegistry maps device identifiers to operator-facing names and to the
// viewer coordinates of the archive control.
type DeviceRegistry interface {
	DeviceName(id string) string
	DeviceCoordinates(id string) Coordinates
}

type Object struct {
	Key          string
	ContentType  string
	Filename     string
	Size         int64
	LastModified time.Time
}

type ObjectStoreOptions struct {
	ContentType string
	Filename    string
}

type ObjectPresignOptions struct {
	Expiry   time.Duration
	Filename string
}

type QueueSendOptions struct {
	Attributes map[string]string
	Delay      time.Duration
}

type QueueMessage struct {
	ID            string
	Body          string
	Attributes    map[string]string
	ReceiptHandle string
	ReceiveCount  int
}

type Coordinates struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (c Coordinates) IsZero() bool {
	return c.X == 0 && c.Y == 0
}
