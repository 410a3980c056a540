// Package service assembles the pipeline, worker and HTTP surface from
// configuration.
package service

import (
	"context"
	"io"
	"os"

	"github.com/alarmvault/alarmvault/pkg/api"
	"github.com/alarmvault/alarmvault/pkg/capture"
	"github.com/alarmvault/alarmvault/pkg/config"
	"github.com/alarmvault/alarmvault/pkg/credentials"
	"github.com/alarmvault/alarmvault/pkg/deadletter"
	"github.com/alarmvault/alarmvault/pkg/httperr"
	"github.com/alarmvault/alarmvault/pkg/logstorage"
	"github.com/alarmvault/alarmvault/pkg/pipeline"
	"github.com/alarmvault/alarmvault/pkg/registry"
	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/alarmvault/alarmvault/pkg/worker"
	"github.com/alarmvault/alarmvault/provider/aws"
	"github.com/convox/logger"
)

var log = logger.New("ns=service")

type Service struct {
	API        *api.Server
	Config     *config.Config
	DeadLetter *deadletter.Handler
	Pipeline   *pipeline.Pipeline
	Provider   *aws.Provider
	Worker     *worker.Worker
}

// New loads the configuration and builds a service on AWS.
func New(ctx context.Context) (*Service, error) {
	c, err := config.Load()
	if err != nil {
		return nil, err
	}

	p, err := aws.FromConfig(c)
	if err != nil {
		return nil, err
	}

	recent := logstorage.New(logstorage.DefaultMax, c.LogWindow)

	logger.Output = io.MultiWriter(os.Stdout, recent)

	return NewWithProvider(ctx, c, p, recent)
}

// NewWithProvider builds a service on p. Recent is an optional in-process log
// source consulted when the provider has no recent log lines.
func NewWithProvider(ctx context.Context, c *config.Config, p *aws.Provider, recent structs.LogReader) (*Service, error) {
	log := log.At("new").Start()

	loc, err := c.Location()
	if err != nil {
		return nil, log.Error(err)
	}

	reg, err := registry.Load(ctx, c.DeviceRegistry, p, c.DefaultCoordinates())
	if err != nil {
		return nil, log.Error(err)
	}

	httperr.Configure(c.RollbarToken, "")

	capturer := capture.New(capture.Chrome{}, capture.Options{
		Annotate:        c.AnnotateClicks,
		DeadlineMargin:  c.DeadlineMargin,
		DownloadRoot:    c.DownloadDir,
		DownloadTimeout: c.DownloadTimeout,
		ExecPath:        c.ChromePath,
		Headless:        c.Headless,
		PageLoadTimeout: c.PageLoadTimeout,
		PollInterval:    c.DownloadPoll,
		ReadyTimeout:    c.ReadyTimeout,
		SettleDelay:     c.SettleDelay,
	})

	s := &Service{Config: c, Provider: p}

	s.Pipeline = &pipeline.Pipeline{
		Capturer:    capturer,
		Credentials: credentials.NewCache(p, c.SecretID),
		Queue:       p,
		Registry:    reg,
		Storage:     p,
		Options: pipeline.Options{
			Delay:    c.ProcessingDelay,
			Location: loc,
		},
	}

	s.DeadLetter = &deadletter.Handler{
		Logs:    logstorage.Chain{p, recent},
		Mailer:  p,
		Queue:   p,
		Storage: p,
		Options: deadletter.Options{
			LogLimit:  c.LogLimit,
			LogWindow: c.LogWindow,
			Location:  loc,
			NotifyTo:  c.Recipients(),
		},
	}

	s.Worker = &worker.Worker{
		DeadLetter: s.DeadLetter,
		Handler:    s.Pipeline,
		Queue:      p,
	}

	s.API = api.New(s.Pipeline, api.Options{
		APIKey:             c.APIKey,
		DeadLetterQueueURL: c.DeadLetterQueueURL,
		Location:           loc,
		PresignExpiry:      c.PresignExpiry,
		SearchDays:         c.SearchDays,
		Summary:            c.Summary(),
	})

	log.Successf("bucket=%q devices=%d recipients=%d", c.Bucket, reg.Len(), len(c.Recipients()))

	return s, nil
}
