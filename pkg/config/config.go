// Package config loads service settings from the environment. Every
// variable may be given with or without the ALARMVAULT_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const Prefix = "alarmvault"

type Config struct {
	Region   string `envconfig:"AWS_REGION" default:"us-east-1"`
	Endpoint string `envconfig:"AWS_ENDPOINT"`

	Bucket             string `envconfig:"BUCKET"`
	QueueURL           string `envconfig:"QUEUE_URL"`
	DeadLetterQueueURL string `envconfig:"DLQ_URL"`
	SecretID           string `envconfig:"SECRET_ID" default:"alarmvault/viewer"`

	ProcessingDelay time.Duration `envconfig:"PROCESSING_DELAY" default:"120s"`
	PageLoadTimeout time.Duration `envconfig:"PAGE_LOAD_TIMEOUT" default:"20s"`
	ReadyTimeout    time.Duration `envconfig:"READY_TIMEOUT" default:"15s"`
	SettleDelay     time.Duration `envconfig:"SETTLE_DELAY" default:"5s"`
	DownloadTimeout time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"118s"`
	DownloadPoll    time.Duration `envconfig:"DOWNLOAD_POLL" default:"1s"`
	DeadlineMargin  time.Duration `envconfig:"DEADLINE_MARGIN" default:"15s"`

	SearchDays    int           `envconfig:"SEARCH_DAYS" default:"30"`
	PresignExpiry time.Duration `envconfig:"PRESIGN_EXPIRY" default:"1h"`

	NotifyFrom string   `envconfig:"NOTIFY_FROM"`
	NotifyTo   []string `envconfig:"NOTIFY_TO"`

	LogGroup  string        `envconfig:"LOG_GROUP"`
	LogWindow time.Duration `envconfig:"LOG_WINDOW" default:"30m"`
	LogLimit  int           `envconfig:"LOG_LIMIT" default:"100"`

	TimeZone string `envconfig:"TIME_ZONE" default:"UTC"`

	DeviceRegistry string  `envconfig:"DEVICE_REGISTRY"`
	DefaultClickX  float64 `envconfig:"DEFAULT_CLICK_X"`
	DefaultClickY  float64 `envconfig:"DEFAULT_CLICK_Y"`

	ChromePath     string `envconfig:"CHROME_PATH"`
	Headless       bool   `envconfig:"HEADLESS" default:"true"`
	DownloadDir    string `envconfig:"DOWNLOAD_DIR" default:"/tmp/downloads"`
	AnnotateClicks bool   `envconfig:"ANNOTATE_CLICKS" default:"true"`

	APIKey       string `envconfig:"API_KEY"`
	RollbarToken string `envconfig:"ROLLBAR_TOKEN"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var c Config

	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, errors.WithStack(err)
	}

	if _, err := c.Location(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Location resolves TimeZone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.TimeZone) == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid time zone %q", c.TimeZone)
	}

	return loc, nil
}

func (c *Config) DefaultCoordinates() structs.Coordinates {
	return structs.Coordinates{X: c.DefaultClickX, Y: c.DefaultClickY}
}

// Recipients returns NotifyTo without blank entries.
func (c *Config) Recipients() []string {
	rs := []string{}

	for _, r := range c.NotifyTo {
		if r = strings.TrimSpace(r); r != "" {
			rs = append(rs, r)
		}
	}

	return rs
}

// Summary is the non-secret view of the configuration exposed by the
// summary endpoint.
func (c *Config) Summary() map[string]string {
	return map[string]string{
		"bucket":          c.Bucket,
		"processingDelay": c.ProcessingDelay.String(),
		"queue":           configured(c.QueueURL),
		"deadLetterQueue": configured(c.DeadLetterQueueURL),
		"notifications":   fmt.Sprintf("%d recipient(s)", len(c.Recipients())),
		"searchDays":      fmt.Sprintf("%d", c.SearchDays),
		"timeZone":        c.TimeZone,
	}
}

func configured(v string) string {
	if v == "" {
		return "not configured"
	}
	return "configured"
}
