package helpers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alarmvault/alarmvault/pkg/structs"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go/service/cloudwatchlogs/cloudwatchlogsiface"
	"github.com/pkg/errors"
)

func AwsErrorCode(err error) string {
	var ae awserr.Error

	if errors.As(err, &ae) {
		return ae.Code()
	}

	return ""
}

// AwsNotFound reports whether err is one of the codes AWS uses for a missing
// object or resource.
func AwsNotFound(err error) bool {
	switch AwsErrorCode(err) {
	case "NoSuchKey", "NotFound", "ResourceNotFoundException", "AWS.SimpleQueueService.NonExistentQueue":
		return true
	}
	return false
}

// CloudWatchLogsRecent returns the newest opts.Limit log lines from group,
// oldest first. FilterLogEvents pages forward from the start of the window,
// so every page is read and only the tail is kept.
func CloudWatchLogsRecent(ctx context.Context, cw cloudwatchlogsiface.CloudWatchLogsAPI, group string, opts structs.LogsOptions) ([]string, error) {
	limit := DefaultInt(opts.Limit, 100)

	req := &cloudwatchlogs.FilterLogEventsInput{
		Interleaved:  aws.Bool(true),
		LogGroupName: aws.String(group),
	}

	if opts.Filter != nil {
		req.FilterPattern = aws.String(*opts.Filter)
	}

	if opts.Since != nil {
		req.StartTime = aws.Int64(Millis(time.Now().Add(-*opts.Since)))
	}

	es := []*cloudwatchlogs.FilteredLogEvent{}

	for {
		res, err := cw.FilterLogEventsWithContext(ctx, req)
		if err != nil {
			return nil, errors.WithStack(err)
		}

		es = append(es, res.Events...)

		if len(es) > limit {
			sort.SliceStable(es, func(i, j int) bool { return aws.Int64Value(es[i].Timestamp) < aws.Int64Value(es[j].Timestamp) })
			es = es[len(es)-limit:]
		}

		if res.NextToken == nil {
			break
		}

		req.NextToken = res.NextToken
	}

	sort.SliceStable(es, func(i, j int) bool { return aws.Int64Value(es[i].Timestamp) < aws.Int64Value(es[j].Timestamp) })

	lines := make([]string, 0, len(es))

	for _, e := range es {
		t := time.Unix(0, aws.Int64Value(e.Timestamp)*int64(time.Millisecond)).UTC()
		lines = append(lines, fmt.Sprintf("%s %s %s", t.Format(time.RFC3339), aws.StringValue(e.LogStreamName), aws.StringValue(e.Message)))
	}

	return lines, nil
}
