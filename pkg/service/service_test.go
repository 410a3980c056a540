package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alarmvault/alarmvault/pkg/config"
	"github.com/alarmvault/alarmvault/pkg/logstorage"
	"github.com/alarmvault/alarmvault/pkg/service"
	"github.com/alarmvault/alarmvault/provider/aws"
	"github.com/convox/logger"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Output = &bytes.Buffer{}
}

func TestNewWithProvider(t *testing.T) {
	c := &config.Config{
		Bucket:             "videos",
		DeadLetterQueueURL: "https://sqs/dlq",
		DeviceRegistry:     `{"cameras":[{"id":"AABBCCDDEEFF","name":"Front Door"}]}`,
		NotifyTo:           []string{"ops@example.org", " "},
		SearchDays:         7,
		TimeZone:           "America/New_York",
	}

	p := &aws.Provider{Bucket: "videos"}

	s, err := service.NewWithProvider(context.Background(), c, p, logstorage.New(0, 0))
	require.NoError(t, err)

	require.Equal(t, "Front Door", s.Pipeline.Registry.DeviceName("AA:BB:CC:DD:EE:FF"))
	require.Equal(t, "America/New_York", s.Pipeline.Options.Location.String())
	require.Equal(t, []string{"ops@example.org"}, s.DeadLetter.Options.NotifyTo)
	require.Equal(t, s.Pipeline, s.Worker.Handler)
	require.Equal(t, s.DeadLetter, s.Worker.DeadLetter)
	require.Equal(t, 7, s.API.Options.SearchDays)
	require.Equal(t, "https://sqs/dlq", s.API.Options.DeadLetterQueueURL)
}

func TestNewWithProviderBadTimeZone(t *testing.T) {
	_, err := service.NewWithProvider(context.Background(), &config.Config{TimeZone: "Mars/Olympus"}, &aws.Provider{}, nil)
	require.Error(t, err)
}

func TestNewWithProviderBadRegistry(t *testing.T) {
	_, err := service.NewWithProvider(context.Background(), &config.Config{DeviceRegistry: "{not json"}, &aws.Provider{}, nil)
	require.Error(t, err)
}
