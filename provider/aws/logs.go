package aws

import (
	"context"

	"github.com/alarmvault/alarmvault/pkg/helpers"
	"github.com/alarmvault/alarmvault/pkg/structs"
)

// LogsRecent reads recent lines from the function's log group.
func (p *Provider) LogsRecent(ctx context.Context, opts structs.LogsOptions) ([]string, error) {
	if p.LogGroup == "" {
		return nil, ErrNotConfigured("log group")
	}

	return helpers.CloudWatchLogsRecent(ctx, p.CloudWatchLogs, p.LogGroup, opts)
}
