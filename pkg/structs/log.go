package structs

import "time"

type LogsOptions struct {
	Filter *string
	Limit  *int
	Since  *time.Duration
}
